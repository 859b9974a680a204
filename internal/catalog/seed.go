package catalog

import (
	"context"
	"fmt"
)

func standardFields() []Field {
	return []Field{
		{Name: "brideName", Label: "Bride's Name", Kind: FieldText, Placeholder: "Enter bride's name", Required: true},
		{Name: "groomName", Label: "Groom's Name", Kind: FieldText, Placeholder: "Enter groom's name", Required: true},
		{Name: "weddingDate", Label: "Wedding Date", Kind: FieldDate, Required: true},
		{Name: "venue", Label: "Venue", Kind: FieldText, Placeholder: "Enter wedding venue"},
		{Name: "message", Label: "Personal Message", Kind: FieldTextarea, Placeholder: "Share your special message"},
		{Name: "music", Label: "Background Music", Kind: FieldMusic},
	}
}

// BuiltinTemplates returns the bundled wedding template set.
func BuiltinTemplates() []Template {
	templates := []Template{
		{
			Title:           "Royal Rajasthani Wedding",
			Description:     "A majestic template inspired by the rich heritage of Rajasthan, featuring intricate mandala patterns and traditional motifs.",
			ThumbnailURL:    "https://images.unsplash.com/photo-1519741497674-611481863552?q=80&w=1000",
			DurationSeconds: 30,
			CompositionID:   "RoyalRajasthaniWedding",
			Tags:            []string{"traditional", "royal", "mandala", "indian"},
			Theme:           "royal",
		},
		{
			Title:           "Modern Fusion Celebration",
			Description:     "A contemporary take on Indian weddings, blending modern aesthetics with traditional elements.",
			ThumbnailURL:    "https://images.unsplash.com/photo-1511795409834-ef04bbd61622?q=80&w=1000",
			DurationSeconds: 25,
			CompositionID:   "ModernFusionCelebration",
			Tags:            []string{"modern", "fusion", "contemporary", "minimal"},
			Theme:           "modern",
		},
		{
			Title:           "Floral Garden Wedding",
			Description:     "A romantic template adorned with delicate floral patterns and soft pastel colors.",
			ThumbnailURL:    "https://images.unsplash.com/photo-1519225421980-715cb0215aed?q=80&w=1000",
			DurationSeconds: 28,
			CompositionID:   "FloralGardenWedding",
			Tags:            []string{"floral", "romantic", "garden", "pastel"},
			Theme:           "romantic",
		},
		{
			Title:           "Luxury Gold Affair",
			Description:     "An opulent template featuring gold accents and elegant typography for a luxurious celebration.",
			ThumbnailURL:    "https://images.unsplash.com/photo-1519741497674-611481863552?q=80&w=1000",
			DurationSeconds: 32,
			CompositionID:   "LuxuryGoldAffair",
			Tags:            []string{"luxury", "gold", "elegant", "opulent"},
			Theme:           "luxury",
		},
		{
			Title:           "Minimalist Modern",
			Description:     "A clean and sophisticated template with minimal design elements and modern typography.",
			ThumbnailURL:    "https://images.unsplash.com/photo-1511795409834-ef04bbd61622?q=80&w=1000",
			DurationSeconds: 22,
			CompositionID:   "MinimalistModern",
			Tags:            []string{"minimal", "modern", "clean", "sophisticated"},
			Theme:           "modern",
		},
	}
	for i := range templates {
		templates[i].ID = Slug(templates[i].Title)
		templates[i].Fields = standardFields()
	}
	return templates
}

// Seed upserts the bundled templates into the store. Seeding is idempotent:
// template IDs are derived from titles, so repeat runs update in place rather
// than duplicating rows. Returns the number of templates written.
func Seed(ctx context.Context, store *Store) (int, error) {
	templates := BuiltinTemplates()
	for _, tmpl := range templates {
		if err := store.Upsert(ctx, tmpl); err != nil {
			return 0, fmt.Errorf("seed template %s: %w", tmpl.ID, err)
		}
	}
	return len(templates), nil
}
