package domain

import "strings"

type categoryKeywords struct {
	key      string
	keywords []string
}

// categoryKeywordTable is checked in order, so earlier categories win when a
// title matches several.
var categoryKeywordTable = []categoryKeywords{
	{"cat_transport", []string{"uber", "taxi", "bus", "tren", "metro", "gasolina", "fuel", "peaje", "lyft", "cabify", "didi", "zug", "bahn", "treno", "densha"}},
	{"cat_food", []string{"mcdonalds", "burger", "pizza", "sushi", "restaurante", "kfc", "starbucks", "cafe", "coffee", "lunch", "dinner", "taco", "comida", "almuerzo", "cena", "essen", "cibo", "tabemono"}},
	{"cat_shopping", []string{"amazon", "walmart", "target", "zara", "nike", "adidas", "ropa", "clothes", "shoes", "tienda", "market", "supermercado", "compra", "einkaufen", "spesa", "kaimono"}},
	{"cat_entertainment", []string{"netflix", "spotify", "hbo", "disney", "cine", "movie", "cinema", "juego", "game", "steam", "playstation", "xbox", "kino", "film", "eiga"}},
	{"cat_utilities", []string{"luz", "agua", "gas", "internet", "wifi", "telefono", "celular", "phone", "bill", "factura", "electricidad", "strom", "wasser", "luce", "acqua", "denki"}},
	{"cat_housing", []string{"alquiler", "rent", "hipoteca", "mortgage", "casa", "home", "mantenimiento", "miete", "affitto", "yachin"}},
	{"cat_health", []string{"farmacia", "pharmacy", "doctor", "medico", "hospital", "dentista", "salud", "gym", "gimnasio", "apotheke", "byoin"}},
	{"cat_salary", []string{"nomina", "salary", "sueldo", "pago", "payroll", "gehalt", "stipendio", "kyuryo"}},
}

// SuggestCategory guesses a category key from a free-text title. Only
// categories of the matching kind are considered for income and expense
// transactions. The second result is false when nothing matched.
func SuggestCategory(title string, typ TransactionType) (string, bool) {
	lower := strings.ToLower(title)
	for _, entry := range categoryKeywordTable {
		if !categoryFits(entry.key, typ) {
			continue
		}
		for _, k := range entry.keywords {
			if strings.Contains(lower, k) {
				return entry.key, true
			}
		}
	}
	return "", false
}

func categoryFits(key string, typ TransactionType) bool {
	c, ok := CategoryByKey(key)
	if !ok {
		return false
	}
	switch typ {
	case TransactionIncome:
		return c.Type == CategoryIncome
	case TransactionExpense:
		return c.Type == CategoryExpense
	default:
		return true
	}
}
