package usecase

import "github.com/kirillkom/shape-stylist/internal/core/domain"

type sizeKey struct {
	shape    string
	category string
}

const defaultSizeAdvice = "Check the size chart and order your usual size."

var sizeAdvice = map[sizeKey]string{
	{domain.ShapePear, CategoryBottoms}:             "Size to your hips and have the waist taken in if needed.",
	{domain.ShapePear, CategoryTops}:                "Order your usual size; a fitted shoulder keeps the top balanced.",
	{domain.ShapePear, CategoryDresses}:             "Choose the size that fits your hips; A-line cuts leave room at the waist.",
	{domain.ShapeApple, CategoryTops}:               "Size up if the fabric is not stretchy so it drapes over the midsection.",
	{domain.ShapeApple, CategoryDresses}:            "Fit to the bust; empire and wrap cuts adjust at the waist.",
	{domain.ShapeApple, CategoryBottoms}:            "Look for mid-rise with a comfortable waistband in your waist size.",
	{domain.ShapeHourglass, CategoryDresses}:        "Fit to your bust and hips; a belt or wrap handles the waist.",
	{domain.ShapeHourglass, CategoryTops}:           "Fit to the bust; consider tailoring at the waist.",
	{domain.ShapeHourglass, CategoryBottoms}:        "Choose high-rise styles sized to your hips; a contoured waistband avoids gaps.",
	{domain.ShapeInvertedTriangle, CategoryTops}:    "Size to your shoulders and bust; stretch fabrics help across the back.",
	{domain.ShapeInvertedTriangle, CategoryDresses}: "Fit to the shoulders; skirts with volume balance the frame.",
	{domain.ShapeInvertedTriangle, CategoryBottoms}: "Your usual size; wide legs and pockets add welcome volume.",
	{domain.ShapeRectangle, CategoryDresses}:        "Your usual size; belted or peplum styles create waist definition.",
	{domain.ShapeRectangle, CategoryTops}:           "Your usual size; avoid going oversized so the shape stays defined.",
	{domain.ShapeRectangle, CategoryBottoms}:        "Your usual size; pleats or detailing at the hip add curve.",
	{domain.ShapeVShape, CategoryTops}:              "Size to your chest and shoulders; athletic fits avoid a baggy waist.",
	{domain.ShapeVShape, CategoryBottoms}:           "Size to your waist; straight or tapered legs balance the shoulders.",
	{domain.ShapeOval, CategoryTops}:                "Size to the midsection and choose relaxed or regular fits.",
	{domain.ShapeOval, CategoryBottoms}:             "Size to your waist with a flat front; avoid low rises.",
}

var stylingTips = map[string]string{
	CategoryDresses: "Finish with a pointed shoe and simple jewelry to keep the line long.",
	CategoryTops:    "Tuck loosely at the front to mark the waist without adding bulk.",
	CategoryBottoms: "Pair with a fitted top and a shoe that continues the leg line.",
	CategoryGeneral: "Keep the rest of the outfit simple so this piece stands out.",
}
