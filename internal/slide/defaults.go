package slide

// Placeholder text used by the editor and the custom-layout seeding.
const (
	DefaultTitle        = "Slide Title"
	DefaultCustomTitle  = "Custom Title"
	DefaultBulletText   = "New point"
	DefaultElementText  = "New text"
	DefaultImageContent = "Image placeholder"
)

// DefaultBullets seeds bullet lists when none exist.
func DefaultBullets() []string {
	return []string{"Point 1", "Point 2", "Point 3"}
}

// Default returns the starting document of a new editing session.
func Default() SlideData {
	return SlideData{
		Layout:           LayoutContent,
		Title:            DefaultTitle,
		Subtitle:         "Optional Subtitle",
		BulletPoints:     DefaultBullets(),
		ColumnOnePoints:  []string{"Column 1 Point 1", "Column 1 Point 2"},
		ColumnTwoPoints:  []string{"Column 2 Point 1", "Column 2 Point 2"},
		ImageDescription: "Description of the image that should appear here",
		Quote:            "This is a featured quote that stands out on the slide",
		Attribution:      "- Quote Attribution",
	}
}
