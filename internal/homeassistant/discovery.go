package homeassistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ha-image-scene/internal/model"
)

const areasTemplate = `{% set ns = namespace(areas=[]) %}` +
	`{% for a in areas() %}{% set ns.areas = ns.areas + [{"id": a, "name": area_name(a)}] %}{% endfor %}` +
	`{{ ns.areas | tojson }}`

const areaLightsTemplate = `{% set ns = namespace(lights=[]) %}` +
	`{% for e in area_entities(__AREA__) | select('match', 'light[.]') %}` +
	`{% set ns.lights = ns.lights + [{"entity_id": e, ` +
	`"name": state_attr(e, 'friendly_name') or e, ` +
	`"color_modes": state_attr(e, 'supported_color_modes') or [], ` +
	`"group": state_attr(e, 'entity_id') is not none}] %}` +
	`{% endfor %}{{ ns.lights | tojson }}`

// colorModes are the supported_color_modes that accept rgb_color.
var colorModes = map[string]struct{}{
	"hs":    {},
	"rgb":   {},
	"rgbw":  {},
	"rgbww": {},
	"xy":    {},
}

type lightInfo struct {
	EntityID   string   `json:"entity_id"`
	Name       string   `json:"name"`
	ColorModes []string `json:"color_modes"`
	Group      bool     `json:"group"`
}

func (c *Client) Areas(ctx context.Context) ([]model.Area, error) {
	raw, err := c.RenderTemplate(ctx, areasTemplate)
	if err != nil {
		return nil, err
	}
	var areas []model.Area
	if err := json.Unmarshal([]byte(raw), &areas); err != nil {
		return nil, fmt.Errorf("decode areas: %w", err)
	}
	for i := range areas {
		if areas[i].Name == "" {
			areas[i].Name = areas[i].ID
		}
	}
	sort.SliceStable(areas, func(i, j int) bool {
		return strings.ToLower(areas[i].Name) < strings.ToLower(areas[j].Name)
	})
	return areas, nil
}

// ColorLights lists the individual color-capable lights in an area. Light
// groups are skipped so each bulb gets its own sample.
func (c *Client) ColorLights(ctx context.Context, areaID string) ([]model.Light, error) {
	if strings.TrimSpace(areaID) == "" {
		return nil, errors.New("area id required")
	}
	quoted, err := json.Marshal(areaID)
	if err != nil {
		return nil, err
	}
	raw, err := c.RenderTemplate(ctx, strings.Replace(areaLightsTemplate, "__AREA__", string(quoted), 1))
	if err != nil {
		return nil, err
	}
	var infos []lightInfo
	if err := json.Unmarshal([]byte(raw), &infos); err != nil {
		return nil, fmt.Errorf("decode area lights: %w", err)
	}
	lights := filterColorLights(infos)
	c.log.Debug("discovered lights", "area", areaID, "total", len(infos), "color", len(lights))
	return lights, nil
}

func filterColorLights(infos []lightInfo) []model.Light {
	out := make([]model.Light, 0, len(infos))
	for _, info := range infos {
		if info.Group || !IsColorCapable(info.ColorModes) {
			continue
		}
		name := info.Name
		if name == "" {
			name = info.EntityID
		}
		out = append(out, model.Light{EntityID: info.EntityID, Name: name})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func IsColorCapable(modes []string) bool {
	for _, m := range modes {
		if _, ok := colorModes[strings.ToLower(m)]; ok {
			return true
		}
	}
	return false
}
