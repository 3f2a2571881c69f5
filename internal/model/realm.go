package model

// EntityID identifies a realm across all component tables.
type EntityID uint32

// InvalidEntity is the zero id. No realm ever carries it.
const InvalidEntity EntityID = 0

// TechCategory groups implemented technologies by the part of the economy
// they improve.
type TechCategory string

const (
	TechAgriculture    TechCategory = "agriculture"
	TechCrafting       TechCategory = "crafting"
	TechNaval          TechCategory = "naval"
	TechAdministration TechCategory = "administration"
	TechAcademic       TechCategory = "academic"
)

// TechCategories lists all categories in a stable order.
var TechCategories = []TechCategory{
	TechAgriculture, TechCrafting, TechNaval, TechAdministration, TechAcademic,
}
