package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/jmerino/hiddengems/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	gemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Gem",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.Int},
			"position":    &graphql.Field{Type: geoPointType},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"tags":        &graphql.Field{Type: graphql.NewList(graphql.String)},
			"price":       &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"gems": &graphql.Field{
				Type:        graphql.NewList(gemType),
				Description: "List gems filtered by tags, price, and radius from a center",
				Args: graphql.FieldConfigArgument{
					"tags":        &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"price":       &graphql.ArgumentConfig{Type: graphql.String},
					"lat":         &graphql.ArgumentConfig{Type: graphql.Float},
					"lon":         &graphql.ArgumentConfig{Type: graphql.Float},
					"radiusMiles": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var criteria domain.FilterCriteria

					if tags, ok := p.Args["tags"].([]interface{}); ok {
						for _, t := range tags {
							if s, ok := t.(string); ok {
								criteria.Tags = append(criteria.Tags, domain.Tag(s))
							}
						}
					}
					if price, ok := p.Args["price"].(string); ok {
						criteria.Price = domain.Price(price)
					}
					lat, okLat := p.Args["lat"].(float64)
					lon, okLon := p.Args["lon"].(float64)
					if okLat && okLon {
						criteria.Center = &domain.GeoPoint{Lat: lat, Lon: lon}
					}
					if raw, ok := p.Args["radiusMiles"].(string); ok {
						criteria.RadiusMiles = domain.ParseRadiusMiles(raw)
					}

					return deps.Queries.Filtered(p.Context, criteria), nil
				},
			},
			"gem": &graphql.Field{
				Type:        gemType,
				Description: "Get a gem by id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(int)
					return deps.Gems.Get(p.Context, uint64(id))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
