// package search implements fuzzy title search over archived playlist entries.
//
// Titles and queries are case-folded, stripped of diacritics and whitespace-collapsed
// before they are compared. The score of a candidate is the Ratcliff/Obershelp ratio
// 2*M/T, where M is the number of matched runes and T the total number of runes in both
// strings, so 1 means identical and 0 means nothing in common.
//
// A search keeps candidates scoring at least the cutoff, best first, up to the limit.
// It can be scoped to one playlist or run over the whole archive.
package search
