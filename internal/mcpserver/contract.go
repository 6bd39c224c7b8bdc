package mcpserver

// RecipeFormat describes the markdown format recipe files must follow to be
// listed and fetched.
const RecipeFormat = `# Recipe File Format

Every recipe is one UTF-8 markdown file in the content directory. The file
name without ` + "`.md`" + ` is the recipe slug.

## Structure

` + "```" + `markdown
---
title: "Æbletærte"               # REQUIRED for listings
description: Sprød tærte med æbler
image: /images/aebletaerte.jpg
time: 60                         # minutes, default 30
difficulty: Nem                  # default Nem
servings: 8                      # default 4
categories: [dessert, kage]
---

Body text in plain markdown. It is returned as-is.
` + "```" + `

## Rules

1. The first line must be exactly ` + "`---`" + `, and the block ends at the next ` + "`---`" + ` line.
2. Each line is ` + "`key: value`" + `. Only the first colon separates key and value.
3. Values may be wrapped in single or double quotes; the quotes are stripped.
4. ` + "`categories`" + ` is a bracketed, comma-separated list. Quotes inside the list
   do not protect commas.
5. A file without ` + "`title`" + ` is left out of listings but can still be fetched by
   slug; its title becomes the slug.
6. Nested YAML (indented lists, maps) is not supported.
`
