package clatex_test

import (
	"context"
	"fmt"
	"strings"

	clatex "github.com/alnah/go-clatex"
)

// Example renders a theorem environment to LaTeX.
func Example() {
	svc, err := clatex.New()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer svc.Close()

	result, err := svc.Render(context.Background(), clatex.Input{
		Format: clatex.FormatLaTeX,
		Source: clatex.MapSource{"index": ":::{environment} theorem\n:title: Pythagoras\na^2 + b^2 = c^2\n:::\n"},
		Target: clatex.Target{DocName: "index", Title: "Notes"},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(strings.Contains(result.Output, `\begin{theorem}[Pythagoras]`))
	// Output: true
}

// Example_project renders every configured document of a project to HTML
// from a single parse.
func Example_project() {
	cfg, err := clatex.ParseConfig([]byte(`
documents:
  - {startDoc: index, target: guide, title: Guide}
  - {startDoc: faq, target: faq, title: FAQ, docClass: howto}
`))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	svc, err := clatex.New()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer svc.Close()

	src := clatex.MapSource{
		"index": "# Guide\n\n{textcolor}`<#FF0000> Warning` see {doc}`faq`.\n",
		"faq":   "# FAQ\n\n:::{align} center\nAsk away.\n:::\n",
	}
	project, err := svc.Load(context.Background(), src, cfg)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	for _, target := range project.Targets() {
		result, err := svc.Render(context.Background(), clatex.Input{
			Format:  clatex.FormatHTML,
			Project: project,
			Target:  target,
		})
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println(target.Title, strings.Contains(result.Output, "</html>"))
	}
	// Output:
	// Guide true
	// FAQ true
}
