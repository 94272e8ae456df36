// Package extract locates currency-labeled rate quotes inside the raw,
// unstructured text of institution pages.
//
// # Extraction shape
//
// Every extractor follows the same shape, with source-specific parameters:
//
//  1. Find the first occurrence of the currency label in the text
//     (e.g. "EUR", /EURO/i, /DOLLARS?\s*USD/i). No label, no quote.
//  2. Take a bounded window of text right after the label (600-800 chars,
//     source-specific) so unrelated numbers elsewhere on the page don't
//     contaminate the result.
//  3. Scan the window for numeric tokens: 1-3 leading digits, optional
//     thousands groups ('.' or ','), a decimal separator, and 2-5
//     fractional digits.
//  4. Pick buy/sell tokens by the source's positional layout. When the
//     window doesn't hold the expected token count, fall back to the first
//     strictly-positive tokens that normalize cleanly, in order.
//
// # Variants
//
// ## bpnet (Banque Populaire)
//
// The rate page renders an 8-column ticker per currency:
//
//	buy, change, high, low, sell, change, high, low
//
// so buy is token 0 and sell is token 4. Window: 800 chars.
//
// ## attijari (Attijariwafa Bank)
//
// A plain two-column table, buy then sell. Window: 600 chars.
//
// ## reference (central bank)
//
// A single official rate with no bid/ask spread; the one matched value is
// used for both buy and sell. Window: 600 chars.
//
// The positional layouts are heuristics inferred from unversioned
// third-party markup. When a page changes shape, extractors degrade to
// "no quote" for the affected currency rather than guessing.
package extract
