package recurrence

import (
	"fmt"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/domain"
)

type phrasing struct {
	daily, weekly, monthly, yearly string
	weekdays                       [7]string
	months                         [12]string
	clock                          string
	monthDay                       func(day int, month string) string
}

var languages = map[string]phrasing{
	"en": {
		daily: "Every day", weekly: "Every", monthly: "Every", yearly: "Every",
		weekdays: [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		months: [12]string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
		clock:    "3:04 PM",
		monthDay: func(day int, month string) string { return fmt.Sprintf("%s %d", month, day) },
	},
	"es": {
		daily: "Todos los días", weekly: "Todos los", monthly: "Todos los días", yearly: "Cada",
		weekdays: [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
		months: [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		clock:    "15:04",
		monthDay: func(day int, month string) string { return fmt.Sprintf("%d de %s", day, month) },
	},
	"fr": {
		daily: "Tous les jours", weekly: "Tous les", monthly: "Le", yearly: "Chaque",
		weekdays: [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
		months: [12]string{"janvier", "février", "mars", "avril", "mai", "juin",
			"juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		clock:    "15:04",
		monthDay: func(day int, month string) string { return fmt.Sprintf("%d %s", day, month) },
	},
	"pt": {
		daily: "Todos os dias", weekly: "Toda", monthly: "Todo dia", yearly: "Todo",
		weekdays: [7]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"},
		months: [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
			"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
		clock:    "15:04",
		monthDay: func(day int, month string) string { return fmt.Sprintf("%d de %s", day, month) },
	},
}

// Describe renders a human label for a schedule anchored at date, for
// example "Every Monday" or "Todos los días 15". Unsupported languages fall
// back to English.
func Describe(freq domain.Frequency, date time.Time, language string) string {
	l, ok := languages[language]
	if !ok {
		l = languages["en"]
	}

	switch freq {
	case domain.Daily:
		return fmt.Sprintf("%s (%s)", l.daily, date.Format(l.clock))
	case domain.Weekly:
		return fmt.Sprintf("%s %s", l.weekly, l.weekdays[date.Weekday()])
	case domain.Monthly:
		return fmt.Sprintf("%s %d", l.monthly, date.Day())
	case domain.Yearly:
		return fmt.Sprintf("%s %s", l.yearly, l.monthDay(date.Day(), l.months[date.Month()-1]))
	default:
		return string(freq)
	}
}
