package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/pathwise/pathwise-backend/internal/app"
	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/apierr"
)

// conceptMissing reports whether a slug lookup failed because the concept does
// not exist yet, rather than because the store was unreachable.
func conceptMissing(err error) bool {
	return apierr.IsKind(err, apierr.KindNotFound)
}

func tagsJSON(tags []string) (datatypes.JSON, error) {
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// catalog is the on-disk seed format. Edges and paths reference concepts by
// slug so the file stays stable across databases.
type catalog struct {
	Concepts []struct {
		Slug        string   `yaml:"slug"`
		Name        string   `yaml:"name"`
		Category    string   `yaml:"category"`
		Domain      string   `yaml:"domain"`
		Difficulty  string   `yaml:"difficulty"`
		Description string   `yaml:"description"`
		Tags        []string `yaml:"tags"`
	} `yaml:"concepts"`

	Edges []struct {
		Kind     string  `yaml:"kind"`
		From     string  `yaml:"from"`
		To       string  `yaml:"to"`
		Strength float64 `yaml:"strength"`
	} `yaml:"edges"`

	Paths []struct {
		Name                     string `yaml:"name"`
		Category                 string `yaml:"category"`
		Difficulty               string `yaml:"difficulty"`
		EstimatedDurationMinutes int    `yaml:"estimated_duration_minutes"`
		IsPublic                 bool   `yaml:"is_public"`
		IsAdaptive               bool   `yaml:"is_adaptive"`
		Concepts                 []struct {
			Slug                     string  `yaml:"slug"`
			EstimatedDurationMinutes int     `yaml:"estimated_duration_minutes"`
			RequiredMastery          float64 `yaml:"required_mastery"`
		} `yaml:"concepts"`
	} `yaml:"paths"`
}

func main() {
	file := flag.String("file", "seed/catalog.yaml", "path to the catalog file")
	flag.Parse()

	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	defer a.Close(ctx)

	if err := seed(ctx, a, *file); err != nil {
		a.Log.Error("Seed failed", "error", err)
		os.Exit(1)
	}
	a.Log.Info("Seed complete")
}

func seed(ctx context.Context, a *app.App, file string) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	var cat catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	graphSvc := a.Services.Graph

	// Concepts already present are reused, so reruns are safe.
	idBySlug := make(map[string]uuid.UUID, len(cat.Concepts))
	var toCreate []*domain.Concept
	for _, c := range cat.Concepts {
		slug := strings.TrimSpace(c.Slug)
		if slug == "" {
			return fmt.Errorf("catalog concept without slug (name %q)", c.Name)
		}
		existing, err := graphSvc.GetConceptBySlug(ctx, slug)
		if err == nil {
			idBySlug[slug] = existing.ID
			continue
		}
		if !conceptMissing(err) {
			return fmt.Errorf("look up concept %s: %w", slug, err)
		}
		row := &domain.Concept{
			Slug:        slug,
			Name:        c.Name,
			Category:    c.Category,
			Domain:      c.Domain,
			Difficulty:  domain.Difficulty(c.Difficulty),
			Description: c.Description,
		}
		if len(c.Tags) > 0 {
			row.Tags, err = tagsJSON(c.Tags)
			if err != nil {
				return fmt.Errorf("concept %s tags: %w", slug, err)
			}
		}
		toCreate = append(toCreate, row)
	}
	if len(toCreate) > 0 {
		created, err := graphSvc.CreateConcepts(ctx, toCreate)
		if err != nil {
			return fmt.Errorf("create concepts: %w", err)
		}
		for _, c := range created {
			idBySlug[c.Slug] = c.ID
		}
	}
	a.Log.Info("Concepts seeded", "total", len(idBySlug), "created", len(toCreate))

	for _, e := range cat.Edges {
		fromID, ok := idBySlug[e.From]
		if !ok {
			return fmt.Errorf("edge references unknown concept %q", e.From)
		}
		toID, ok := idBySlug[e.To]
		if !ok {
			return fmt.Errorf("edge references unknown concept %q", e.To)
		}
		if _, err := graphSvc.AddEdge(ctx, domain.EdgeKind(e.Kind), fromID, toID, e.Strength); err != nil {
			// Reruns hit the unique index on (from, to, kind).
			a.Log.Debug("edge skipped", "from", e.From, "to", e.To, "kind", e.Kind, "error", err)
		}
	}

	// Paths are independent of each other; create them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, p := range cat.Paths {
		g.Go(func() error {
			path := &domain.LearningPath{
				Name:                     p.Name,
				Category:                 p.Category,
				Difficulty:               domain.Difficulty(p.Difficulty),
				EstimatedDurationMinutes: p.EstimatedDurationMinutes,
				IsPublic:                 p.IsPublic,
				IsAdaptive:               p.IsAdaptive,
			}
			members := make([]*domain.LearningPathConcept, 0, len(p.Concepts))
			for i, m := range p.Concepts {
				conceptID, ok := idBySlug[m.Slug]
				if !ok {
					return fmt.Errorf("path %q references unknown concept %q", p.Name, m.Slug)
				}
				members = append(members, &domain.LearningPathConcept{
					ConceptID:                conceptID,
					SequenceOrder:            i + 1,
					EstimatedDurationMinutes: m.EstimatedDurationMinutes,
					RequiredMastery:          m.RequiredMastery,
				})
			}
			if _, err := graphSvc.CreatePath(gctx, path, members); err != nil {
				return fmt.Errorf("create path %q: %w", p.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if graphSvc.GraphAvailable() {
		if err := graphSvc.SyncAll(ctx); err != nil {
			return fmt.Errorf("sync graph projection: %w", err)
		}
	}
	return nil
}
