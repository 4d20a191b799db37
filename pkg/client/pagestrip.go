package client

// PageItem is one entry of a page control strip: either a numbered page
// or an ellipsis placeholder for a collapsed run.
type PageItem struct {
	Page     int
	Ellipsis bool
	Current  bool
}

// Strip is a rendered page control: the visible page numbers and whether
// the previous/next controls are disabled at the edges.
type Strip struct {
	Items        []PageItem
	PrevDisabled bool
	NextDisabled bool
}

// PageStrip computes the page numbers a pagination control shows: the
// first and last pages always, the pages within neighborhood of current,
// and ellipsis markers for the collapsed runs between them.
func PageStrip(current, last, neighborhood int) Strip {
	if last < 1 {
		last = 1
	}
	if current < 1 {
		current = 1
	}
	if current > last {
		current = last
	}
	if neighborhood < 0 {
		neighborhood = 0
	}

	strip := Strip{
		PrevDisabled: current == 1,
		NextDisabled: current == last,
	}

	prev := 0
	for page := 1; page <= last; page++ {
		if !visible(page, current, last, neighborhood) {
			continue
		}
		if prev > 0 && page-prev > 1 {
			strip.Items = append(strip.Items, PageItem{Ellipsis: true})
		}
		strip.Items = append(strip.Items, PageItem{Page: page, Current: page == current})
		prev = page
	}

	return strip
}

func visible(page, current, last, neighborhood int) bool {
	if page == 1 || page == last {
		return true
	}
	return page >= current-neighborhood && page <= current+neighborhood
}
