package core

// Category is one of the fixed expense categories.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTravel        Category = "Travel"
	CategoryBills         Category = "Bills"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health"
	CategoryShopping      Category = "Shopping"
	CategoryEducation     Category = "Education"
	CategoryOther         Category = "Other"
)

// Categories returns every allowed category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTravel,
		CategoryBills,
		CategoryEntertainment,
		CategoryHealth,
		CategoryShopping,
		CategoryEducation,
		CategoryOther,
	}
}

func (c Category) String() string {
	return string(c)
}

// IsValid returns true if the category is part of the fixed enumeration.
func (c Category) IsValid() bool {
	switch c {
	case CategoryFood, CategoryTravel, CategoryBills, CategoryEntertainment,
		CategoryHealth, CategoryShopping, CategoryEducation, CategoryOther:
		return true
	default:
		return false
	}
}
