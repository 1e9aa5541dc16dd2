package core

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Shopping      Category = "Shopping"
	Entertainment Category = "Entertainment"
	Housing       Category = "Housing"
	Utilities     Category = "Utilities"
	Health        Category = "Health"
	Deposit       Category = "Deposit"
	Other         Category = "Other"
)

type Category string

// CategoryInfo is the display metadata of a category.
type CategoryInfo struct {
	Value    Category
	Label    string
	Icon     string // lucide icon name
	Color    string // badge css classes
	RawColor string // chart color
}

var categories = []CategoryInfo{
	{Value: Food, Label: "飲食", Icon: "utensils", Color: "bg-orange-100 text-orange-600", RawColor: "#f97316"},
	{Value: Transport, Label: "交通", Icon: "bus", Color: "bg-blue-100 text-blue-600", RawColor: "#2563eb"},
	{Value: Shopping, Label: "購物", Icon: "shopping-bag", Color: "bg-purple-100 text-purple-600", RawColor: "#9333ea"},
	{Value: Entertainment, Label: "娛樂", Icon: "film", Color: "bg-pink-100 text-pink-600", RawColor: "#db2777"},
	{Value: Housing, Label: "居住", Icon: "home", Color: "bg-emerald-100 text-emerald-600", RawColor: "#059669"},
	{Value: Utilities, Label: "水電", Icon: "zap", Color: "bg-yellow-100 text-yellow-600", RawColor: "#ca8a04"},
	{Value: Health, Label: "醫療", Icon: "heart-pulse", Color: "bg-rose-100 text-rose-600", RawColor: "#e11d48"},
	{Value: Deposit, Label: "存款", Icon: "wallet", Color: "bg-sky-100 text-sky-600", RawColor: "#0284c7"},
	{Value: Other, Label: "其他", Icon: "more-horizontal", Color: "bg-slate-100 text-slate-600", RawColor: "#475569"},
}

var categoryIndex = func() map[Category]int {
	idx := make(map[Category]int, len(categories))
	for i, c := range categories {
		idx[c.Value] = i
	}
	return idx
}()

var typeLabels = map[TransactionType]string{
	Expense:    "支出",
	Income:     "存入",
	CreditCard: "信用卡",
	Memo:       "隨手記",
}

func (c Category) IsValid() bool {
	_, ok := categoryIndex[c]
	return ok
}

// Categories returns the registry in display order.
func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), categories...)
}

// LookupCategory returns the metadata for c, falling back to Other.
func LookupCategory(c Category) CategoryInfo {
	if i, ok := categoryIndex[c]; ok {
		return categories[i]
	}
	return categories[categoryIndex[Other]]
}

// EntryCategories lists the categories selectable for a transaction type.
func EntryCategories(t TransactionType) []CategoryInfo {
	out := make([]CategoryInfo, 0, len(categories))
	for _, c := range categories {
		if (t == Income) == (c.Value == Deposit) {
			out = append(out, c)
		}
	}
	return out
}

// TypeLabel returns the display label of a transaction type.
func TypeLabel(t TransactionType) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}
