package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/core/ports"
)

const (
	serverName    = "shape-stylist"
	serverVersion = "1.0.0"
)

// Tools exposes classification and recommendations as MCP tools.
type Tools struct {
	bodyShape   ports.BodyShapeService
	recommender ports.ShopRecommender
	defaultShop string
}

func NewTools(bodyShape ports.BodyShapeService, recommender ports.ShopRecommender, defaultShop string) *Tools {
	return &Tools{
		bodyShape:   bodyShape,
		recommender: recommender,
		defaultShop: strings.TrimSpace(defaultShop),
	}
}

func (t *Tools) NewServer() *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))
	s.AddTool(classifyTool(), t.classify)
	s.AddTool(recommendTool(), t.recommend)
	s.AddTool(profileTool(), t.profile)
	return s
}

// ServeStdio blocks until stdin closes.
func (t *Tools) ServeStdio() error {
	return server.ServeStdio(t.NewServer())
}

func measurementOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("gender", mcp.Required(), mcp.Enum("woman", "man", "non-binary"), mcp.Description("Shopper gender presentation")),
		mcp.WithNumber("bust", mcp.Required(), mcp.Description("Bust or chest circumference")),
		mcp.WithNumber("waist", mcp.Required(), mcp.Description("Waist circumference")),
		mcp.WithNumber("hips", mcp.Description("Hip circumference")),
		mcp.WithNumber("shoulders", mcp.Description("Shoulder circumference")),
		mcp.WithNumber("height", mcp.Description("Height")),
		mcp.WithNumber("weight", mcp.Description("Weight")),
		mcp.WithString("age_bracket", mcp.Description("Age bracket such as teen, 25-34 or 65+")),
		mcp.WithString("units", mcp.Enum("metric", "imperial"), mcp.Description("cm/kg or in/lb, default metric")),
	}
}

func classifyTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Classify a body shape from measurements and optionally save it on the customer profile."),
		mcp.WithString("shop", mcp.Description("Shop domain; defaults to the configured shop")),
		mcp.WithString("customer_id", mcp.Description("Customer to save the profile for")),
	}
	return mcp.NewTool("classify_body_shape", append(opts, measurementOptions()...)...)
}

func recommendTool() mcp.Tool {
	return mcp.NewTool("recommend_products",
		mcp.WithDescription("Rank shop products for a body shape. Falls back to the rule-based scorer when AI is unavailable."),
		mcp.WithString("shop", mcp.Description("Shop domain; defaults to the configured shop")),
		mcp.WithString("shape", mcp.Description("Body shape label; optional when customer_id has a saved profile")),
		mcp.WithString("customer_id", mcp.Description("Customer whose saved profile supplies the shape")),
		mcp.WithString("color_season", mcp.Enum("spring", "summer", "autumn", "winter")),
		mcp.WithNumber("count", mcp.Description("Number of suggestions")),
		mcp.WithNumber("min_score", mcp.Description("Minimum suitability score 0-100")),
		mcp.WithBoolean("ai_enabled", mcp.Description("Use the AI ranking when the shop allows it, default true")),
	)
}

func profileTool() mcp.Tool {
	return mcp.NewTool("get_body_profile",
		mcp.WithDescription("Return the saved body profile of a customer."),
		mcp.WithString("shop", mcp.Description("Shop domain; defaults to the configured shop")),
		mcp.WithString("customer_id", mcp.Required()),
	)
}

func (t *Tools) classify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	shop, err := t.shop(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	gender, err := req.RequireString("gender")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m := domain.Measurements{
		Gender:     domain.Gender(gender),
		AgeBracket: req.GetString("age_bracket", ""),
		Height:     req.GetFloat("height", 0),
		Weight:     req.GetFloat("weight", 0),
		Bust:       req.GetFloat("bust", 0),
		Waist:      req.GetFloat("waist", 0),
		Hips:       req.GetFloat("hips", 0),
		Shoulders:  req.GetFloat("shoulders", 0),
		Units:      domain.UnitSystem(req.GetString("units", string(domain.UnitsMetric))),
	}

	profile, err := t.bodyShape.Classify(ctx, shop, req.GetString("customer_id", ""), m)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(profile.Result)
}

func (t *Tools) recommend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	shop, err := t.shop(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := t.recommender.RecommendForShop(ctx, shop, req.GetString("customer_id", ""), domain.RecommendationRequest{
		Shape:       req.GetString("shape", ""),
		ColorSeason: req.GetString("color_season", ""),
		Count:       req.GetInt("count", 0),
		MinScore:    req.GetInt("min_score", 0),
		AIEnabled:   req.GetBool("ai_enabled", true),
	})
	if err != nil {
		return toolError(err)
	}
	return jsonResult(result)
}

func (t *Tools) profile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	shop, err := t.shop(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	customerID, err := req.RequireString("customer_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	profile, err := t.bodyShape.GetProfile(ctx, shop, customerID)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(profile)
}

func (t *Tools) shop(req mcp.CallToolRequest) (string, error) {
	shop := strings.TrimSpace(req.GetString("shop", t.defaultShop))
	if shop == "" {
		return "", fmt.Errorf("shop is required")
	}
	return strings.ToLower(shop), nil
}

// toolError reports caller mistakes as tool errors and everything else as a
// protocol error.
func toolError(err error) (*mcp.CallToolResult, error) {
	if domain.IsKind(err, domain.ErrInvalidInput) || domain.IsKind(err, domain.ErrNotFound) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}
