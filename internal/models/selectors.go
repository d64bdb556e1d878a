package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/tvtrack/internal/shared"
)

// Filter partitions the collection by watched state.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterWatched   Filter = "watched"
	FilterUnwatched Filter = "unwatched"
)

// Filters lists every [Filter] in display order.
var Filters = []Filter{FilterAll, FilterWatched, FilterUnwatched}

// SortMode orders a derived view.
type SortMode string

const (
	SortAlphabetical SortMode = "alphabetical"
	SortRating       SortMode = "rating"
	SortNextEpisode  SortMode = "nextEpisode"
)

// SortModes lists every [SortMode] in display order.
var SortModes = []SortMode{SortAlphabetical, SortRating, SortNextEpisode}

// Theme selects the TUI palette.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// GroupBy selects the grouped view.
type GroupBy string

const (
	GroupNone   GroupBy = "none"
	GroupGenre  GroupBy = "genre"
	GroupStatus GroupBy = "status"
)

// GroupBys lists every [GroupBy] in display order.
var GroupBys = []GroupBy{GroupNone, GroupGenre, GroupStatus}

// ParseFilter parses s case-insensitively; empty input yields [FilterAll].
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return FilterAll, fmt.Errorf("%w: unknown filter %q (want all, watched or unwatched)", shared.ErrInvalidArgument, s)
}

// ParseSortMode parses s case-insensitively; empty input yields [SortAlphabetical].
//
// "next" and "next-episode" are accepted for [SortNextEpisode].
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(s) {
	case "":
		return SortAlphabetical, nil
	case "next", "next-episode", "nextepisode":
		return SortNextEpisode, nil
	}
	for _, m := range SortModes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return SortAlphabetical, fmt.Errorf("%w: unknown sort %q (want alphabetical, rating or nextEpisode)", shared.ErrInvalidArgument, s)
}

// ParseTheme parses s; empty input yields [ThemeDark].
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(s) {
	case "", string(ThemeDark):
		return ThemeDark, nil
	case string(ThemeLight):
		return ThemeLight, nil
	}
	return ThemeDark, fmt.Errorf("%w: unknown theme %q (want dark or light)", shared.ErrInvalidArgument, s)
}

// ParseGroupBy parses s; empty input yields [GroupNone].
func ParseGroupBy(s string) (GroupBy, error) {
	if s == "" {
		return GroupNone, nil
	}
	for _, g := range GroupBys {
		if strings.EqualFold(s, string(g)) {
			return g, nil
		}
	}
	return GroupNone, fmt.Errorf("%w: unknown grouping %q (want none, genre or status)", shared.ErrInvalidArgument, s)
}

func (f Filter) Next() Filter     { return next(Filters, f) }
func (m SortMode) Next() SortMode { return next(SortModes, m) }
func (g GroupBy) Next() GroupBy   { return next(GroupBys, g) }

// Toggle switches between dark and light.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

func next[T comparable](all []T, cur T) T {
	for i, v := range all {
		if v == cur {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}
