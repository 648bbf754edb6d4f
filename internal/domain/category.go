package domain

// Category is a crime-type label.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// NewCategory is the creation input for a category.
type NewCategory struct {
	Name        string
	Color       string
	Description string
}

// CategorySummary is the embedded view of a category inside article responses.
type CategorySummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Summary projects c to its embedded view.
func (c Category) Summary() CategorySummary {
	return CategorySummary{ID: c.ID, Name: c.Name, Color: c.Color}
}

// Crime category names, in the order the keyword classifier evaluates them.
const (
	CategoryMurder          = "Murder"
	CategoryRobbery         = "Robbery"
	CategoryCybercrime      = "Cybercrime"
	CategoryKidnapping      = "Kidnapping"
	CategoryFraud           = "Fraud"
	CategoryDrugTrafficking = "Drug Trafficking"
	CategoryTerrorism       = "Terrorism"
	CategoryCorruption      = "Corruption"
)

// CrimeCategories is the fixed catalog seeded into the category registry.
func CrimeCategories() []NewCategory {
	return []NewCategory{
		{Name: CategoryMurder, Color: "#EF4444", Description: "Homicide and killing-related crimes"},
		{Name: CategoryRobbery, Color: "#3B82F6", Description: "Theft with force or threat"},
		{Name: CategoryCybercrime, Color: "#F59E0B", Description: "Digital and internet-based crimes"},
		{Name: CategoryKidnapping, Color: "#8B5CF6", Description: "Abduction and hostage situations"},
		{Name: CategoryFraud, Color: "#EC4899", Description: "Deception for financial gain"},
		{Name: CategoryDrugTrafficking, Color: "#10B981", Description: "Illegal drug trade and distribution"},
		{Name: CategoryTerrorism, Color: "#6B7280", Description: "Violent acts for political aims"},
		{Name: CategoryCorruption, Color: "#6366F1", Description: "Abuse of power for personal gain"},
	}
}
