// Package card encodes and parses FITS header cards.
//
// A header is a sequence of fixed-width 80-character card images. Each
// valued card carries a keyword (8 characters, left justified), a value
// indicator ("= "), a value field and an optional comment after a slash.
// Two conventions extend the fixed grid:
//
//   - Long keywords (more than 8 characters, or characters outside
//     [A-Z0-9_-]) are written as "HIERARCH <keyword> = <value>".
//   - Long string values are split over CONTINUE cards: every chunk but the
//     last ends with an ampersand inside the quotes.
//
// The package deals in logical cards: Format may emit several images for
// one card, and Decode folds CONTINUE images back into one card.
package card
