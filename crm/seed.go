package crm

import "context"

var seedHCPs = []HCP{
	{
		Name:         "Dr. Anaya Iyer",
		Specialty:    "Cardiology",
		Organization: "Northbridge Medical Center",
		City:         "Pune",
		State:        "MH",
		Tier:         "A",
	},
	{
		Name:         "Dr. Kunal Mehta",
		Specialty:    "Endocrinology",
		Organization: "Sunrise Hospitals",
		City:         "Ahmedabad",
		State:        "GJ",
		Tier:         "B",
	},
}

// Seed inserts the default HCPs once. When HCPs already exist it returns the
// current listing untouched.
func Seed(ctx context.Context, store Store) ([]HCP, error) {
	count, err := store.CountHCPs(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		for i := range seedHCPs {
			hcp := seedHCPs[i]
			if err := store.CreateHCP(ctx, &hcp); err != nil {
				return nil, err
			}
		}
	}
	return store.ListHCPs(ctx)
}
