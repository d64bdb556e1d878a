package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tvtrack/internal/formatter"
	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/shows"
)

var (
	_ list.Item = showItem{}
	_ list.Item = hitItem{}
)

// showItem wraps [models.TrackedShow] to implement [list.Item].
type showItem struct {
	show  models.TrackedShow
	group string
}

func (i showItem) FilterValue() string { return i.show.Title }
func (i showItem) Title() string {
	mark := "[ ]"
	if i.show.Watched {
		mark = "[x]"
	}
	title := fmt.Sprintf("%s %s", mark, i.show.Title)
	if i.group != "" {
		title = fmt.Sprintf("%s › %s", i.group, title)
	}
	return title
}
func (i showItem) Description() string {
	desc := fmt.Sprintf("★ %s • %s", i.show.Rating, formatter.Genres(i.show.Genres))
	if i.show.NextEpisode != nil {
		desc = fmt.Sprintf("%s • next %s", desc, i.show.NextEpisode.Airdate)
	}
	return desc
}

// hitItem wraps [models.CatalogHit] to implement [list.Item].
type hitItem struct {
	hit models.CatalogHit
}

func (i hitItem) FilterValue() string { return i.hit.Title }
func (i hitItem) Title() string       { return i.hit.Title }
func (i hitItem) Description() string {
	desc := fmt.Sprintf("★ %s", i.hit.Rating)
	if len(i.hit.Genres) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.hit.Genres, ", "))
	}
	return desc
}

// showItems flattens a grouped view into list items. Named groups prefix each title with their key.
func showItems(groups []shows.Group) []list.Item {
	items := []list.Item{}
	for _, g := range groups {
		for _, s := range g.Shows {
			items = append(items, showItem{show: s, group: g.Key})
		}
	}
	return items
}

func hitItems(hits []models.CatalogHit) []list.Item {
	items := make([]list.Item, len(hits))
	for i, h := range hits {
		items[i] = hitItem{hit: h}
	}
	return items
}
