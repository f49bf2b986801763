package tmdb

import (
	"sort"
	"strconv"
	"strings"

	"cinewatch/internal/media"
)

// Items returns the results of page tagged with t, or nil for a nil page.
func Items(page *media.Page, t media.MediaType) []media.Item {
	if page == nil {
		return nil
	}
	return media.TagType(page.Results, t)
}

// TopCast returns the first n cast members in billing order.
func TopCast(credits *Credits, n int) []CastMember {
	if credits == nil {
		return nil
	}
	cast := make([]CastMember, len(credits.Cast))
	copy(cast, credits.Cast)
	sort.SliceStable(cast, func(i, j int) bool { return cast[i].Order < cast[j].Order })
	if n > 0 && len(cast) > n {
		cast = cast[:n]
	}
	return cast
}

// Trailer picks the first YouTube video typed "Trailer", else the first
// YouTube video of any type.
func Trailer(videos *Videos) *Video {
	if videos == nil {
		return nil
	}
	var fallback *Video
	for i := range videos.Results {
		v := &videos.Results[i]
		if !strings.EqualFold(v.Site, "YouTube") {
			continue
		}
		if v.Type == "Trailer" {
			return v
		}
		if fallback == nil {
			fallback = v
		}
	}
	return fallback
}

// CastItems maps the combined credits of a person onto items sorted by
// popularity, dropping duplicate (id, type) pairs.
func CastItems(pc *PersonCredits) []media.Item {
	if pc == nil {
		return nil
	}
	seen := make(map[string]bool, len(pc.Cast))
	items := make([]media.Item, 0, len(pc.Cast))
	for _, it := range pc.Cast {
		key := string(it.MediaType) + ":" + strconv.FormatInt(it.ID, 10)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, it)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Popularity > items[j].Popularity })
	return items
}

// SortByName orders items by display title, case-insensitively.
func SortByName(items []media.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].DisplayTitle()) < strings.ToLower(items[j].DisplayTitle())
	})
}

func SortLanguages(langs []Language) {
	sort.SliceStable(langs, func(i, j int) bool { return langs[i].EnglishName < langs[j].EnglishName })
}

func SortCountries(countries []Country) {
	sort.SliceStable(countries, func(i, j int) bool { return countries[i].EnglishName < countries[j].EnglishName })
}
