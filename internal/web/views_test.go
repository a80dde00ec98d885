package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewMap(t *testing.T) {
	views := NewViewMap().
		Add("product_list", "/products").
		Add("product_detail", "/products/{slug}").
		Add("home", "/")

	tests := []struct {
		path string
		want string
	}{
		{"/", "home"},
		{"/products", "product_list"},
		{"/products/", "product_list"},
		{"/products/widget", "product_detail"},
		{"/products/widget/", "product_detail"},
		{"/nowhere", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, views.ResolveToName(tt.path), "path %q", tt.path)
	}
}
