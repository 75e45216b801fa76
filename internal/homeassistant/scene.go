package homeassistant

import (
	"context"
	"errors"

	"ha-image-scene/internal/scene"
)

// CreateScene creates or replaces a scene with the given object id.
func (c *Client) CreateScene(ctx context.Context, sceneID string, entities map[string]scene.EntityState) error {
	if len(entities) == 0 {
		return errors.New("scene has no entities")
	}
	return c.CallService(ctx, "scene", "create", map[string]interface{}{
		"scene_id": sceneID,
		"entities": entities,
	})
}

func (c *Client) ActivateScene(ctx context.Context, entityID string) error {
	return c.CallService(ctx, "scene", "turn_on", map[string]string{"entity_id": entityID})
}

// ApplyScene creates the scene and turns it on, returning its entity id.
func (c *Client) ApplyScene(ctx context.Context, name string, entities map[string]scene.EntityState) (string, error) {
	if err := c.CreateScene(ctx, scene.SceneID(name), entities); err != nil {
		return "", err
	}
	entityID := scene.EntityID(name)
	if err := c.ActivateScene(ctx, entityID); err != nil {
		return "", err
	}
	c.log.Info("scene applied", "scene", entityID, "lights", len(entities))
	return entityID, nil
}
