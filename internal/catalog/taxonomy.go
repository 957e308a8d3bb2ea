package catalog

import (
	"net/url"
	"sort"
)

// Taxonomy maps stable category codes to display names.
type Taxonomy map[string]string

// DefaultTaxonomy is the fixed top-level marketplace taxonomy.
var DefaultTaxonomy = Taxonomy{
	"100001": "Saúde",
	"100006": "Celulares e Dispositivos",
	"100009": "Acessórios de Moda",
	"100010": "Casa e Construção",
	"100011": "Roupas Femininas",
	"100012": "Sapatos Femininos",
	"100013": "Bolsas Femininas",
	"100630": "Beleza",
	"100632": "Bebês e Crianças",
	"100635": "Esportes e Lazer",
	"100637": "Alimentos e Bebidas",
	"100640": "Roupas Masculinas",
	"100643": "Computadores e Acessórios",
}

// Resolve picks the display name for id: the stored name when present,
// then the taxonomy, then id itself.
func (t Taxonomy) Resolve(id, stored string) string {
	if stored != "" {
		return stored
	}
	if name, ok := t[id]; ok {
		return name
	}
	return id
}

// Categories returns the taxonomy as rows sorted by id.
func (t Taxonomy) Categories() []Category {
	out := make([]Category, 0, len(t))
	for id, name := range t {
		out = append(out, Category{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PlaceholderImage returns the placeholder thumbnail used for categories.
func PlaceholderImage(name string) string {
	return "https://via.placeholder.com/64?text=" + url.QueryEscape(name)
}
