package services

import (
	"context"

	"github.com/ladder-gg/ladder/repositories"
)

// TxRunner исполняет функцию в одной транзакции хранилища. Все
// мутирующие операции над агрегатом лобби и все ставки рейтинга
// проходят через него: частичное применение структурно невозможно.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}
