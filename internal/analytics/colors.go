package analytics

import "sync"

// ChartColors токены цветов, которые понимает фронт
var ChartColors = []string{
	"hsl(var(--chart-1))",
	"hsl(var(--chart-2))",
	"hsl(var(--chart-3))",
	"hsl(var(--chart-4))",
	"hsl(var(--chart-5))",
}

// ColorPalette назначает категории цветовой токен
type ColorPalette interface {
	ColorFor(category string) string
}

// HashPalette без состояния: сумма кодов символов по модулю размера палитры.
// Одна и та же категория всегда получает один и тот же цвет, независимо от вызова
type HashPalette struct {
	Colors []string
}

func NewHashPalette() *HashPalette {
	return &HashPalette{Colors: ChartColors}
}

func (p *HashPalette) ColorFor(category string) string {
	if len(p.Colors) == 0 {
		return ""
	}
	sum := 0
	for _, r := range category {
		sum += int(r)
	}
	return p.Colors[sum%len(p.Colors)]
}

// RegistryPalette явный реестр категория -> цвет, цвет выдается по порядку первого появления.
// Живет столько же, сколько владелец (обычно сервер), глобального состояния нет
type RegistryPalette struct {
	mu       sync.Mutex
	colors   []string
	assigned map[string]string
}

func NewRegistryPalette(colors []string) *RegistryPalette {
	if len(colors) == 0 {
		colors = ChartColors
	}
	return &RegistryPalette{
		colors:   colors,
		assigned: make(map[string]string),
	}
}

func (p *RegistryPalette) ColorFor(category string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if color, ok := p.assigned[category]; ok {
		return color
	}
	color := p.colors[len(p.assigned)%len(p.colors)]
	p.assigned[category] = color
	return color
}

// Len кол-во зарегистрированных категорий
func (p *RegistryPalette) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.assigned)
}
