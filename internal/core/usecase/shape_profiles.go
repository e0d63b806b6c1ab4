package usecase

import "github.com/kirillkom/shape-stylist/internal/core/domain"

type shapeProfile struct {
	description     string
	characteristics []string
	styleNotes      []string
}

var shapeProfiles = map[string]shapeProfile{
	domain.ShapePear: {
		description: "Hips are wider than the bust with a defined waist.",
		characteristics: []string{
			"Hips wider than bust",
			"Defined waist",
			"Narrower shoulders",
		},
		styleNotes: []string{
			"Draw attention upward with detailed or brighter tops",
			"Choose A-line skirts and dresses that skim the hips",
			"Balance the hips with structured shoulders or boat necklines",
		},
	},
	domain.ShapeApple: {
		description: "Weight is carried around the midsection with a less defined waist.",
		characteristics: []string{
			"Fuller midsection",
			"Less defined waist",
			"Slimmer legs",
		},
		styleNotes: []string{
			"Use empire waists and V-necks to lengthen the torso",
			"Pick flowing fabrics that drape over the midsection",
			"Show off the legs with straight or bootcut trousers",
		},
	},
	domain.ShapeHourglass: {
		description: "Bust and hips are balanced with a clearly defined waist.",
		characteristics: []string{
			"Balanced bust and hips",
			"Well-defined waist",
			"Curvy silhouette",
		},
		styleNotes: []string{
			"Highlight the waist with wrap dresses and belts",
			"Choose fitted, tailored pieces that follow your curves",
			"Avoid boxy cuts that hide the waistline",
		},
	},
	domain.ShapeInvertedTriangle: {
		description: "Shoulders or bust are broader than the hips.",
		characteristics: []string{
			"Broad shoulders",
			"Narrower hips",
			"Athletic upper body",
		},
		styleNotes: []string{
			"Add volume below the waist with A-line or full skirts",
			"Keep shoulders simple with V-necks and raglan sleeves",
			"Wide-leg trousers balance the upper body",
		},
	},
	domain.ShapeRectangle: {
		description: "Bust, waist and hips are similar in width.",
		characteristics: []string{
			"Straight silhouette",
			"Balanced proportions",
			"Subtle waist definition",
		},
		styleNotes: []string{
			"Create curves with peplum tops and belted waists",
			"Layer pieces to add dimension",
			"Try ruffles, pleats and textured fabrics",
		},
	},
	domain.ShapeVShape: {
		description: "Broad shoulders and chest taper to a narrower waist.",
		characteristics: []string{
			"Broad shoulders",
			"Developed chest",
			"Narrow waist",
		},
		styleNotes: []string{
			"Choose slim or tapered fits that follow the taper",
			"Avoid heavy shoulder padding",
			"Straight-leg trousers keep the lower half in proportion",
		},
	},
	domain.ShapeOval: {
		description: "The midsection is the widest part of the frame.",
		characteristics: []string{
			"Fuller midsection",
			"Rounded chest and waist",
			"Narrower shoulders relative to waist",
		},
		styleNotes: []string{
			"Pick vertical lines and darker tones through the torso",
			"Structured jackets add shape to the shoulders",
			"Avoid clingy fabrics around the waist",
		},
	},
}
