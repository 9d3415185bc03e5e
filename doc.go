// Package larder is the Composition Root for the Larder nutrition tracker.
//
// It connects the parsing and aggregation core with the vault adapters
// (filesystem notes, SQLite lookup cache) behind a small set of functional options.
//
// Philosophy:
//
// A vault is a folder of Markdown notes. Nutrient notes carry per-100g values in
// their frontmatter; any other note logs food with tagged lines. Larder reads
// both and never writes back unless asked to.
//
// Entries:
//
//	#food [[Oats]] 80g             linked: 80 g of the "Oats" nutrient note
//	#food Snack 120kcal 5fat       inline: values written directly on the line
//
// Features:
//
//   - **Nutrient Index**: Name and key lookup over nutrient notes, kept current by the watcher.
//   - **Unit Conversion**: g, kg, oz, lb, ml, l, cup, tbsp and tsp scale linked entries.
//   - **Goals**: Totals are compared against goals from settings or a goals note.
//   - **Highlighting**: Value and amount ranges for editor decorations.
//   - **Food Lookup**: Open Food Facts search with an optional SQLite cache.
//
// Usage:
//
//	svc, err := larder.New("./vault", larder.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	report, ok := svc.Compute(ctx, "#food [[Oats]] 80g")
package larder
