package planner

import "strings"

// BuildShoppingList sums ingredient demand over the schedule, one unit per
// serving, in the order ingredients are first needed.
func BuildShoppingList(days []Day, catalog *Catalog) (ShoppingList, error) {
	list := ShoppingList{}
	pos := make(map[string]int)
	for _, day := range days {
		for _, ds := range day.Dishes {
			dish, ok := catalog.Lookup(ds.DishID)
			if !ok {
				return nil, inconsistent("day %d references unknown dish %q", day.DayIndex, ds.DishID)
			}
			for _, ing := range dish.Ingredients {
				ing = strings.TrimSpace(ing)
				if ing == "" {
					continue
				}
				if i, seen := pos[ing]; seen {
					list[i].Quantity += ds.Servings
					continue
				}
				pos[ing] = len(list)
				list = append(list, ShoppingItem{Ingredient: ing, Quantity: ds.Servings})
			}
		}
	}
	return list, nil
}
