package scraper

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rbnhln/kckScraper/internal/schedule"
)

const (
	teacherOptionSelector = "select#teacher > option"
	// the schedule starts right after the heading that follows the image caption
	scheduleAnchorSelector = ".img_caption ~ h2"
)

// TeacherOptions reads the teacher selector of the listing page. Options
// whose value is not a positive integer (placeholders) are left out.
func TeacherOptions(doc *goquery.Document) map[int]string {
	res := make(map[int]string)
	doc.Find(teacherOptionSelector).Each(func(_ int, s *goquery.Selection) {
		id, err := strconv.Atoi(strings.TrimSpace(s.AttrOr("value", "")))
		if err != nil || id <= 0 {
			return
		}
		res[id] = strings.TrimSpace(s.Text())
	})
	return res
}

// ScheduleNodes returns the siblings following the schedule anchor up to and
// including the first <script>. A page without the anchor has no nodes.
func ScheduleNodes(doc *goquery.Document) []schedule.Node {
	var nodes []schedule.Node

	for sel := doc.Find(scheduleAnchorSelector).First().Next(); sel.Length() > 0; sel = sel.Next() {
		n := schedule.Node{Kind: nodeKind(goquery.NodeName(sel))}
		switch n.Kind {
		case schedule.KindHeader:
			n.Text = sel.Text()
		case schedule.KindParagraph:
			n.Text = lineText(sel)
		}
		nodes = append(nodes, n)

		if n.Kind == schedule.KindTerminal {
			break
		}
	}
	return nodes
}

func nodeKind(tag string) schedule.Kind {
	switch tag {
	case "h4":
		return schedule.KindHeader
	case "p":
		return schedule.KindParagraph
	case "script":
		return schedule.KindTerminal
	default:
		return schedule.KindOther
	}
}

// lineText is the selection's text with every <br> turned into a newline.
func lineText(sel *goquery.Selection) string {
	clone := sel.Clone()
	clone.Find("br").ReplaceWithHtml("\n")
	return clone.Text()
}
