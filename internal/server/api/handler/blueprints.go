package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/generapi/generapi/apitypes"
	"github.com/generapi/generapi/blueprint"
)

// BlueprintList lists every blueprint of the catalog with its placeholder contract.
// The catalog is immutable, so the response is built once.
func BlueprintList(family string, cat *blueprint.Catalog) gin.HandlerFunc {
	resp := Describe(family, cat)
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, resp)
	}
}

// Describe lists the catalog in id order.
func Describe(family string, cat *blueprint.Catalog) apitypes.BlueprintListResponse {
	resp := apitypes.BlueprintListResponse{Family: family, Blueprints: make([]apitypes.BlueprintInfo, 0, cat.Len())}
	for _, id := range cat.IDs() {
		bp, err := cat.Get(id)
		if err != nil {
			continue
		}
		resp.Blueprints = append(resp.Blueprints, blueprintInfo(bp))
	}
	return resp
}

func blueprintInfo(bp *blueprint.Blueprint) apitypes.BlueprintInfo {
	phs := bp.Placeholders()
	info := apitypes.BlueprintInfo{
		ID:           bp.ID(),
		Path:         bp.PathTemplate(),
		Placeholders: make([]apitypes.Placeholder, 0, len(phs)),
	}
	for _, ph := range phs {
		info.Placeholders = append(info.Placeholders, apitypes.Placeholder{
			Name:      ph.Name,
			Kind:      ph.Kind.String(),
			Required:  ph.Required,
			Separator: ph.Separator,
			Prefix:    ph.Prefix,
			Sort:      ph.Sort,
			Item:      ph.Item,
		})
	}
	return info
}
