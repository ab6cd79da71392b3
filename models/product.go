package models

// Category is one of the fixed product labels shown by the display layer
type Category string

const (
	CategoryMeat      Category = "肉"
	CategoryFish      Category = "魚"
	CategoryVegetable Category = "野菜"
	CategoryFruit     Category = "果物"
	CategoryDairy     Category = "乳製品"
	CategoryDrink     Category = "飲料"
	CategoryDeli      Category = "惣菜"
	CategoryDaily     Category = "日用品"
	CategoryOther     Category = "他" // catch-all
)

// Categories lists the closed label set in display order
var Categories = []Category{
	CategoryMeat,
	CategoryFish,
	CategoryVegetable,
	CategoryFruit,
	CategoryDairy,
	CategoryDrink,
	CategoryDeli,
	CategoryDaily,
	CategoryOther,
}

// ParseCategory maps a raw label onto the closed set. Anything unknown becomes CategoryOther.
func ParseCategory(raw string) Category {
	for _, c := range Categories {
		if string(c) == raw {
			return c
		}
	}
	return CategoryOther
}

// Price holds yen amounts; nil means the flyer did not show that variant
type Price struct {
	TaxExcl *int `bson:"tax_excl" json:"taxExcl"`
	TaxIncl *int `bson:"tax_incl" json:"taxIncl"`
}

// ProductRecord represents one priced product read from a flyer image
type ProductRecord struct {
	ProductName string   `bson:"product_name" json:"productName"`
	Price       Price    `bson:"price" json:"price"`
	Unit        string   `bson:"unit" json:"unit"`
	Category    Category `bson:"category" json:"category"`
	ValidFrom   *string  `bson:"valid_from" json:"validFrom"` // YYYY-MM-DD
	ValidTo     *string  `bson:"valid_to" json:"validTo"`     // YYYY-MM-DD
}
