package campaign

import (
	"strings"

	"github.com/notargets/defelement/elements"
)

// Job is one example of one element, to be verified in each of Libraries.
type Job struct {
	Element   *elements.Element
	Example   string
	Libraries []string
}

type JobOptions struct {
	// Reference is the library every other one is compared with.
	Reference string
	// Libraries are the candidate ids, in order; normally every verifying
	// library registered.
	Libraries []string
	// Elements and Impl restrict the campaign, nil meaning no restriction.
	Elements []string
	Impl     []string
}

// ParseList reads a comma separated flag value, "" giving nil.
func ParseList(s string) (list []string) {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return
}

// ParseTest reads the --test flag: a list of element filenames, or "auto"
// for the standard subset.
func ParseTest(s string) []string {
	if strings.TrimSpace(s) == "auto" {
		return append([]string{}, elements.AutoTestElements...)
	}
	return ParseList(s)
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}

// BuildJobs lists the (element, example) pairs to verify, in catalogue
// order. Pairs with no library to compare are left out, as are elements the
// reference does not implement.
func BuildJobs(cat *elements.Catalogue, opts JobOptions) (jobs []Job) {
	for _, el := range cat.Filter(opts.Elements).Elements {
		if !el.Implemented(opts.Reference) {
			continue
		}
		var libs []string
		for _, lib := range opts.Libraries {
			if lib == opts.Reference || !el.Implemented(lib) {
				continue
			}
			if opts.Impl != nil && !contains(opts.Impl, lib) {
				continue
			}
			libs = append(libs, lib)
		}
		if len(libs) == 0 {
			continue
		}
		for _, eg := range el.Examples {
			jobs = append(jobs, Job{Element: el, Example: eg, Libraries: libs})
		}
	}
	return
}
