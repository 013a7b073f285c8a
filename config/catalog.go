package config

import (
	"fmt"
	"strings"
)

// RatingRules — статические константы рейтинговой модели GGP.
// Загружаются один раз и передаются явно; в рантайме не меняются.
type RatingRules struct {
	WinDelta       int // прибавка за победу
	LossDelta      int // отрицательная, вычет за поражение
	Floor          int // рейтинг не опускается ниже
	LevelThreshold int // GGP на один уровень
	MaxLevel       int // уровень насыщается здесь
	SearchRange    int // ±диапазон подбора соперников
}

// Catalog — справочник режимов и серверов плюс рейтинговые константы.
// Общесистемная read-only конфигурация.
type Catalog struct {
	teamSizes map[string]int
	servers   []string
	Rating    RatingRules
}

// DefaultCatalog возвращает продакшен-справочник: четыре режима
// и семнадцать серверов Majestic RP.
func DefaultCatalog() *Catalog {
	servers := make([]string, 0, 17)
	for i := 1; i <= 17; i++ {
		servers = append(servers, fmt.Sprintf("Majestic RP #%d", i))
	}
	return &Catalog{
		teamSizes: map[string]int{
			"1v1": 1,
			"2v2": 2,
			"3v3": 3,
			"5v5": 5,
		},
		servers: servers,
		Rating: RatingRules{
			WinDelta:       50,
			LossDelta:      -25,
			Floor:          0,
			LevelThreshold: 1000,
			MaxLevel:       10,
			SearchRange:    250,
		},
	}
}

// ValidMode проверяет режим по справочнику.
func (c *Catalog) ValidMode(mode string) bool {
	_, ok := c.teamSizes[mode]
	return ok
}

// TeamSize возвращает размер одной команды режима (1v1 → 1, 5v5 → 5).
func (c *Catalog) TeamSize(mode string) (int, bool) {
	n, ok := c.teamSizes[mode]
	return n, ok
}

// Modes возвращает копию списка режимов.
func (c *Catalog) Modes() []string {
	modes := make([]string, 0, len(c.teamSizes))
	for m := range c.teamSizes {
		modes = append(modes, m)
	}
	return modes
}

// Servers возвращает копию каталога серверов в каноническом написании.
func (c *Catalog) Servers() []string {
	out := make([]string, len(c.servers))
	copy(out, c.servers)
	return out
}

// CanonicalServer ищет сервер без учета регистра и возвращает его
// каноническое написание из каталога. Несовпадение после case-fold —
// ошибка валидации у вызывающего, никакого подставления по умолчанию.
func (c *Catalog) CanonicalServer(name string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, s := range c.servers {
		if strings.ToLower(s) == want {
			return s, true
		}
	}
	return "", false
}
