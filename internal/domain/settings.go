package domain

import "github.com/shopspring/decimal"

type NotificationSettings struct {
	LowBalance          bool            `json:"lowBalance"`
	DebtReminders       bool            `json:"debtReminders"`
	GoalMilestones      bool            `json:"goalMilestones"`
	LowBalanceThreshold decimal.Decimal `json:"lowBalanceThreshold"`
}

// Settings are the user's preferences. Currency is the reporting currency
// used for totals and the low balance check.
type Settings struct {
	Name          string               `json:"name"`
	Theme         string               `json:"theme"`
	Currency      Currency             `json:"currency"`
	Language      string               `json:"language"`
	HasOnboarded  bool                 `json:"hasOnboarded"`
	Notifications NotificationSettings `json:"notifications"`
}

// DefaultNotifications enables every alert with a threshold of 100.
func DefaultNotifications() NotificationSettings {
	return NotificationSettings{
		LowBalance:          true,
		DebtReminders:       true,
		GoalMilestones:      true,
		LowBalanceThreshold: decimal.NewFromInt(100),
	}
}

// DefaultSettings is USD, Spanish, system theme and every notification on.
func DefaultSettings() Settings {
	return Settings{
		Theme:         "system",
		Currency:      USD,
		Language:      "es",
		Notifications: DefaultNotifications(),
	}
}

type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// Category is a display category. Transactions store the Key.
type Category struct {
	ID    string       `json:"id"`
	Key   string       `json:"key"`
	Icon  string       `json:"icon"`
	Color string       `json:"color"`
	Type  CategoryType `json:"type"`
}

// DefaultCategories is the built-in catalogue.
var DefaultCategories = []Category{
	{ID: "1", Key: "cat_salary", Icon: "Briefcase", Color: "green", Type: CategoryIncome},
	{ID: "2", Key: "cat_freelance", Icon: "Laptop", Color: "blue", Type: CategoryIncome},
	{ID: "3", Key: "cat_gift", Icon: "Gift", Color: "purple", Type: CategoryIncome},
	{ID: "4", Key: "cat_investment", Icon: "TrendingUp", Color: "emerald", Type: CategoryIncome},
	{ID: "5", Key: "cat_food", Icon: "Utensils", Color: "orange", Type: CategoryExpense},
	{ID: "6", Key: "cat_transport", Icon: "Car", Color: "blue", Type: CategoryExpense},
	{ID: "7", Key: "cat_utilities", Icon: "Zap", Color: "yellow", Type: CategoryExpense},
	{ID: "8", Key: "cat_entertainment", Icon: "Film", Color: "pink", Type: CategoryExpense},
	{ID: "9", Key: "cat_shopping", Icon: "ShoppingBag", Color: "indigo", Type: CategoryExpense},
	{ID: "10", Key: "cat_health", Icon: "Heart", Color: "red", Type: CategoryExpense},
	{ID: "11", Key: "cat_education", Icon: "BookOpen", Color: "teal", Type: CategoryExpense},
	{ID: "12", Key: "cat_housing", Icon: "Home", Color: "stone", Type: CategoryExpense},
	{ID: "13", Key: "cat_other", Icon: "MoreHorizontal", Color: "gray", Type: CategoryExpense},
}

// CategoryByKey looks up a default category by its key.
func CategoryByKey(key string) (Category, bool) {
	for _, c := range DefaultCategories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}
