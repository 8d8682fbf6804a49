package services

import "testing"

func TestPriceInRange(t *testing.T) {
	rules := DefaultRules()

	cases := []struct {
		name       string
		price      *float64
		priceRange string
		want       bool
	}{
		{name: "nil_price_never_excludes", price: nil, priceRange: "$", want: true},
		{name: "no_range_never_excludes", price: fptr(99), priceRange: "", want: true},
		{name: "unknown_band_never_excludes", price: fptr(99), priceRange: "$$$$$", want: true},
		{name: "inside_band", price: fptr(15), priceRange: "$$", want: true},
		{name: "below_band", price: fptr(8), priceRange: "$$", want: false},
		{name: "above_band", price: fptr(30), priceRange: "$$", want: false},
		{name: "open_lower_bound", price: fptr(3), priceRange: "$", want: true},
		{name: "open_upper_bound", price: fptr(200), priceRange: "$$$$", want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rules.PriceInRange(tc.price, tc.priceRange); got != tc.want {
				t.Fatalf("PriceInRange = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPriceLevelInRange(t *testing.T) {
	rules := DefaultRules()
	level := func(v int) *int { return &v }

	cases := []struct {
		name       string
		level      *int
		priceRange string
		want       bool
	}{
		{name: "nil_level_never_excludes", level: nil, priceRange: "$", want: true},
		{name: "cheap_level_in_cheap_band", level: level(1), priceRange: "$", want: true},
		{name: "expensive_level_out_of_cheap_band", level: level(4), priceRange: "$", want: false},
		{name: "cheap_level_out_of_expensive_band", level: level(1), priceRange: "$$$$", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rules.PriceLevelInRange(tc.level, tc.priceRange); got != tc.want {
				t.Fatalf("PriceLevelInRange = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestViolatesStrictDiet(t *testing.T) {
	rules := DefaultRules()

	cases := []struct {
		name  string
		text  string
		diets []string
		want  bool
	}{
		{name: "vegan_vs_cheese", text: "mac and cheese", diets: []string{"vegan"}, want: true},
		{name: "vegan_vs_greens", text: "kale salad with lemon", diets: []string{"vegan"}, want: false},
		{name: "gluten_free_vs_pasta", text: "fresh pasta in tomato sauce", diets: []string{"gluten-free"}, want: true},
		{name: "keto_vs_rice", text: "chicken over rice", diets: []string{"keto"}, want: true},
		{name: "no_diets", text: "mac and cheese", diets: nil, want: false},
		{name: "unknown_diet_ignored", text: "mac and cheese", diets: []string{"carnivore"}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rules.ViolatesStrictDiet(tc.text, tc.diets); got != tc.want {
				t.Fatalf("ViolatesStrictDiet = %v, want %v", got, tc.want)
			}
		})
	}
}
