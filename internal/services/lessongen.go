package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/openai"
)

// FallbackModel marks lesson content produced by the deterministic template
// instead of the model API.
const FallbackModel = "fallback"

// LessonInput is everything the generator needs; it never reads stores.
type LessonInput struct {
	ConceptName string
	Domain      string
	Category    string
	Difficulty  domain.Difficulty
	Description string
	RelatedTo   []string
}

// LessonGenerator produces a markdown lesson body. Implementations must be
// pure with respect to application state.
type LessonGenerator interface {
	Generate(ctx context.Context, in LessonInput) (content, model string, err error)
}

type aiLessonGenerator struct {
	client openai.Client
}

func NewAILessonGenerator(client openai.Client) LessonGenerator {
	return &aiLessonGenerator{client: client}
}

const lessonSystemPrompt = `You are an expert tutor writing a self-contained micro-lesson.
Respond with markdown only, using exactly these sections in order:
# <concept name>
## 1. The Big Picture
## 2. Simple Explanation
## 3. Key Details
## 4. Real-World Examples
## 5. Why It Matters
## 6. Common Misconceptions
Keep the tone friendly and concrete. Do not add sections or front matter.`

func buildLessonPrompt(in LessonInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s-level lesson about %q.\n", in.Difficulty, in.ConceptName)
	if in.Domain != "" {
		fmt.Fprintf(&b, "Domain: %s.\n", in.Domain)
	}
	if in.Category != "" {
		fmt.Fprintf(&b, "Category: %s.\n", in.Category)
	}
	if in.Description != "" {
		fmt.Fprintf(&b, "Working description: %s\n", in.Description)
	}
	if len(in.RelatedTo) > 0 {
		fmt.Fprintf(&b, "Mention how it connects to: %s.\n", strings.Join(in.RelatedTo, ", "))
	}
	return b.String()
}

func (g *aiLessonGenerator) Generate(ctx context.Context, in LessonInput) (string, string, error) {
	if g.client == nil {
		return "", "", fmt.Errorf("no model client configured")
	}
	out, err := g.client.GenerateText(ctx, lessonSystemPrompt, buildLessonPrompt(in))
	if err != nil {
		return "", "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", "", fmt.Errorf("model returned empty lesson")
	}
	return out, g.client.Model(), nil
}

// FallbackLesson renders the deterministic template used when generation
// fails. Same section skeleton as a model lesson, so consumers never need to
// care which one they got.
func FallbackLesson(in LessonInput) string {
	name := in.ConceptName
	desc := in.Description
	if desc == "" {
		desc = fmt.Sprintf("%s is a %s concept", name, in.Difficulty)
		if in.Domain != "" {
			desc += " in " + in.Domain
		}
		desc += "."
	}
	related := "other concepts in this area"
	if len(in.RelatedTo) > 0 {
		related = strings.Join(in.RelatedTo, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)
	fmt.Fprintf(&b, "## 1. The Big Picture\n\n%s\n\n", desc)
	fmt.Fprintf(&b, "## 2. Simple Explanation\n\nThink of %s as a building block: once you understand what it does and when to reach for it, the surrounding ideas fall into place.\n\n", name)
	fmt.Fprintf(&b, "## 3. Key Details\n\n- Difficulty level: %s\n", in.Difficulty)
	if in.Category != "" {
		fmt.Fprintf(&b, "- Category: %s\n", in.Category)
	}
	if in.Domain != "" {
		fmt.Fprintf(&b, "- Domain: %s\n", in.Domain)
	}
	fmt.Fprintf(&b, "- Closely connected to: %s\n\n", related)
	fmt.Fprintf(&b, "## 4. Real-World Examples\n\nPractitioners run into %s whenever they work on problems involving %s. Look for it the next time you study material in this area.\n\n", name, related)
	fmt.Fprintf(&b, "## 5. Why It Matters\n\nUnderstanding %s unlocks the concepts that build on it and makes the rest of your learning path easier to follow.\n\n", name)
	fmt.Fprintf(&b, "## 6. Common Misconceptions\n\nLearners often assume %s can be skipped or picked up later. In practice a solid grasp now saves rework on everything downstream.\n", name)
	return b.String()
}
