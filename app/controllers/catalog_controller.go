package controllers

import (
	"github.com/shashiranjanraj/supplydesk/app/catalog"
	"github.com/shashiranjanraj/supplydesk/pkg/ctx"
)

type CatalogController struct{}

func NewCatalogController() *CatalogController {
	return &CatalogController{}
}

// Index lists the departments and orderable items the request form offers.
func (c *CatalogController) Index(cx *ctx.Context) {
	cx.Success(map[string][]string{
		"departments": catalog.Departments(),
		"items":       catalog.Items(),
	})
}
