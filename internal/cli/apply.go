package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ha-image-scene/internal/config"
	"ha-image-scene/internal/imageload"
	"ha-image-scene/internal/model"
	"ha-image-scene/internal/sampling"
	"ha-image-scene/internal/scene"
)

type applyOptions struct {
	image        string
	area         string
	lights       []string
	name         string
	brightness   int
	minDistance  float64
	edgePadding  float64
	maxDimension int
	seed         int64
	dryRun       bool
}

type applyResult struct {
	Scene    string                       `json:"scene"`
	Points   []model.SamplePoint          `json:"points"`
	Entities map[string]scene.EntityState `json:"entities"`
	DryRun   bool                         `json:"dry_run"`
}

func newApplyCommand(global *globalOptions, cfg config.Config) *cobra.Command {
	opts := &applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Sample an image and push the result as a scene",
		Long: `Sample one random point of the image per light, normalize the colors for
RGB bulbs and create + activate the scene in Home Assistant.

Lights come from --light (repeatable) or from discovery with --area.`,
		Example: `  scenectl apply --image sunset.jpg --area living_room --name "Sunset"
  scenectl apply --image sunset.jpg --light light.desk --light light.shelf --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd, global, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.image, "image", "i", "", "image file to sample (required)")
	f.StringVarP(&opts.area, "area", "a", "", "area id whose color lights are used")
	f.StringArrayVarP(&opts.lights, "light", "l", nil, "light entity id, repeatable; overrides --area")
	f.StringVarP(&opts.name, "name", "n", "Image Scene", "scene name")
	f.IntVarP(&opts.brightness, "brightness", "b", cfg.DefaultBrightness, "brightness for every light (1-255)")
	f.Float64Var(&opts.minDistance, "min-distance", cfg.MinDistance, "minimum distance between sample points (fraction of the image, negative uses the default)")
	f.Float64Var(&opts.edgePadding, "edge-padding", cfg.EdgePadding, "margin kept free of sample points (fraction of the image, negative uses the default)")
	f.IntVar(&opts.maxDimension, "max-dimension", cfg.MaxImageDimension, "downscale the image so neither side exceeds this")
	f.Int64Var(&opts.seed, "seed", 0, "random seed (0 uses the clock)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the scene payload without submitting it")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runApply(cmd *cobra.Command, global *globalOptions, opts *applyOptions) error {
	log := global.logger()

	raster, err := imageload.NewLoader(opts.maxDimension).LoadFile(opts.image)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	log.Debug("image loaded", "path", opts.image, "width", raster.Width(), "height", raster.Height())

	lights, err := resolveLights(cmd, global, opts)
	if err != nil {
		return err
	}

	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	session := sampling.NewSession(sampling.Options{
		MinDistance: opts.minDistance,
		EdgePadding: opts.edgePadding,
		Rand:        rand.New(rand.NewSource(seed)),
	})
	session.Load(raster)
	if err := session.Randomize(lights, session.Raster()); err != nil {
		return err
	}

	points := session.Points()
	entities := scene.Entities(scene.Build(points, opts.brightness))
	result := applyResult{
		Scene:    scene.EntityID(opts.name),
		Points:   points,
		Entities: entities,
		DryRun:   opts.dryRun,
	}

	if !opts.dryRun {
		id, err := global.client().ApplyScene(cmd.Context(), opts.name, entities)
		if err != nil {
			return fmt.Errorf("failed to apply scene: %w", err)
		}
		result.Scene = id
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func resolveLights(cmd *cobra.Command, global *globalOptions, opts *applyOptions) ([]model.Light, error) {
	if len(opts.lights) > 0 {
		out := make([]model.Light, 0, len(opts.lights))
		for _, id := range opts.lights {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			out = append(out, model.Light{EntityID: id, Name: id})
		}
		return out, nil
	}
	if opts.area == "" {
		return nil, errors.New("either --light or --area is required")
	}
	lights, err := global.client().ColorLights(cmd.Context(), opts.area)
	if err != nil {
		return nil, fmt.Errorf("failed to discover lights: %w", err)
	}
	return lights, nil
}
