package models

// Category is a spending category a transaction can be assigned to.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Icon      string `json:"icon,omitempty"`
	IsOffline bool   `json:"is_offline,omitempty"`
}

// CategoryUpdate is a partial update. Nil fields are left untouched.
type CategoryUpdate struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

// Apply merges the non-nil fields of u into c.
func (c *Category) Apply(u CategoryUpdate) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Color != nil {
		c.Color = *u.Color
	}
	if u.Icon != nil {
		c.Icon = *u.Icon
	}
}

// DefaultCategories returns the built-in category list used when the
// app runs offline before any category has ever been cached. Keeping
// this non-empty guarantees the app is usable on first offline launch.
func DefaultCategories() []Category {
	return []Category{
		{ID: "default_groceries", Name: "Groceries", Color: "#4CAF50", Icon: "cart"},
		{ID: "default_housing", Name: "Housing", Color: "#2196F3", Icon: "home"},
		{ID: "default_entertainment", Name: "Entertainment", Color: "#9C27B0", Icon: "film"},
		{ID: "default_transportation", Name: "Transportation", Color: "#FF9800", Icon: "car"},
		{ID: "default_income", Name: "Income", Color: "#8BC34A", Icon: "wallet"},
	}
}
