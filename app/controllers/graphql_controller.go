package controllers

import (
	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/supplydesk/pkg/ctx"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
)

type GraphQLController struct {
	schema graphql.Schema
}

func NewGraphQLController(schema graphql.Schema) *GraphQLController {
	return &GraphQLController{schema: schema}
}

type graphQLBody struct {
	Query         string                 `json:"query" validate:"required"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Query executes one GraphQL operation. Resolver errors travel in the
// result's errors list with a 200, as GraphQL clients expect.
func (c *GraphQLController) Query(cx *ctx.Context) {
	var body graphQLBody
	if !cx.BindJSON(&body) {
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         c.schema,
		RequestString:  body.Query,
		VariableValues: body.Variables,
		OperationName:  body.OperationName,
		Context:        cx.Context(),
	})
	if result.HasErrors() {
		logger.WithCtx(cx.Context()).Info("graphql query returned errors", "errors", len(result.Errors))
	}
	cx.JSON(200, result)
}
