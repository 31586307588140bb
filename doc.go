/*
Package gloss is a review-workflow engine for wiki articles. It turns
position-anchored annotations into a structured writing review and walks the
reviewer through a four-step dialog: compose chapters, adjust the generated
wikitext draft, preview the rendered fragment, inspect the diff and commit
the append to the article's review section.

# Concept

Gloss separates the review composition (chapters of quoted sentences with
advice) from the host that displays it. The engine manages the wizard state
machine, annotation grouping and ordering, optimistic-concurrency section
edits and diff generation, while the host (CLI, HTTP API or MCP agent)
manages presentation. This hexagonal layout lets the same dialog run on a
terminal, behind a JSON API or inside an agent conversation.

# Usage

Construct an Engine around a section editor and open a dialog:

	package main

	import (
		"context"
		"log"

		"github.com/glosskit/gloss"
		"github.com/glosskit/gloss/pkg/adapters/mediawiki"
	)

	func main() {
		editor := mediawiki.New("https://zh.wikipedia.org/w/api.php",
			mediawiki.WithPageTitle("Talk:Example"))

		eng, err := gloss.New(editor, gloss.WithPageTitle("Talk:Example"))
		if err != nil {
			log.Fatal(err)
		}

		// Resolve the commit target from the section heading the user
		// picked and walk the dialog.
		dialog := eng.OpenDialog(`<h2><a href="?title=Talk:Example&action=edit&section=4">edit</a></h2>`)
		w := dialog.Wizard()

		w.SetTitle(0, "Introduction")
		ctx := context.Background()
		for w.Advance(ctx) {
		}
		if err := w.Commit(ctx); err != nil {
			log.Fatal(err)
		}
	}

Annotations can also be imported from JSON exports or loaded from the
configured store; both paths group and sort them into chapters before the
composition adopts them atomically.
*/
package gloss
