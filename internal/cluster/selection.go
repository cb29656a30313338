package cluster

import (
	"os"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Panel is one scatter chart of a selection: two of its columns plotted
// against each other, colored by cluster.
type Panel struct {
	Title  string `yaml:"title" json:"title"`
	X      string `yaml:"x" json:"x"`
	Y      string `yaml:"y" json:"y"`
	XLabel string `yaml:"x_label" json:"x_label"`
	YLabel string `yaml:"y_label" json:"y_label"`
}

// Selection is a named, ordered set of feature columns clustered together.
type Selection struct {
	Name        string   `yaml:"name" json:"name"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Columns     []string `yaml:"columns" json:"columns"`
	Panels      []Panel  `yaml:"panels" json:"panels"`
}

// Validate checks that the selection names at least two distinct columns
// and that each panel plots columns from the selection.
func (s Selection) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return invalid("selection", "name is required")
	}
	if len(s.Columns) < 2 {
		return invalid("selection", "%s: needs at least 2 columns, got %d", s.Name, len(s.Columns))
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if c == "" {
			return invalid("selection", "%s: empty column name", s.Name)
		}
		if seen[c] {
			return invalid("selection", "%s: duplicate column %q", s.Name, c)
		}
		seen[c] = true
	}
	for i, p := range s.Panels {
		if !seen[p.X] || !seen[p.Y] {
			return invalid("selection", "%s: panel %d plots %s x %s outside the selection", s.Name, i, p.X, p.Y)
		}
	}
	return nil
}

// Built-in selection names.
const (
	PublicSupply     = "public-supply"
	Irrigation       = "irrigation"
	TotalWithdrawal  = "total-withdrawal"
	PopulationIncome = "population-income"
)

// DefaultSelections returns the selections charted on the cluster page.
func DefaultSelections() []Selection {
	return []Selection{
		{
			Name:        PublicSupply,
			Title:       "Public Supply Water Withdrawal vs. Public Supply Domestic Use",
			Description: "Here you can see how much your identified cluster uses water in your homes vs. how much is available.",
			Columns:     []string{"ps_wtotl", "do_psdel"},
			Panels: []Panel{{
				Title:  "Water Supply and Use",
				X:      "ps_wtotl",
				Y:      "do_psdel",
				XLabel: "Water Amount Withdrawn for Public Supply (Mgal/d)",
				YLabel: "Domestic Use From Public Supply (Mgal/d)",
			}},
		},
		{
			Name:  Irrigation,
			Title: "Irrigation Water Amount Withdrawn vs. Wastewater Reclaimed",
			Description: "The following model can be used to understand the efficiency of water use in agriculture. " +
				"By comparing the amount of water withdrawn for irrigation to the amount of wastewater reclaimed, " +
				"policymakers and managers can see how much water is being wasted in the agricultural sector.",
			Columns: []string{"ir_wfrto", "ir_recww", "ic_wfrto", "ic_recww", "ig_wfrto", "ig_recww"},
			Panels: []Panel{
				{
					Title:  "Irrigation Water Withdrawl: Crops vs. Golf",
					X:      "ic_wfrto",
					Y:      "ig_wfrto",
					XLabel: "Irrigation-Crop Water Amount Withdrawn (Mgal/d)",
					YLabel: "Irrigation-Golf Water Amount Withdrawn (Mgal/d)",
				},
				{
					Title:  "Irrigation Water Amount Reclaimed",
					X:      "ic_wfrto",
					Y:      "ic_recww",
					XLabel: "Irrigation Water Amount Withdrawn (Mgal/d)",
					YLabel: "Irrigation Wastewater Amount Reclaimed (Mgal/d)",
				},
			},
		},
		{
			Name:  TotalWithdrawal,
			Title: "Total Water Withdrawal vs. Water Withdrawn for Public Supply",
			Description: "The model below can be used to understand the overall demand for water in a region. " +
				"By comparing the total amount of water withdrawn to the amount of water withdrawn for public supply, " +
				"policymakers and managers can see how much water is being used by households, businesses, and industries.",
			Columns: []string{"to_wtotl", "do_psdel", "ps_wtotl"},
			Panels: []Panel{
				{
					Title:  "Total Water Withdrawal and Domestic Use from Public Supply Delivery",
					X:      "to_wtotl",
					Y:      "do_psdel",
					XLabel: "Total Water Withdrawal (Mgal/d)",
					YLabel: "Domestic Use From Public Supply (Mgal/d)",
				},
				{
					Title:  "Total Water Withdrawal and Public Supply Water Withdrawal",
					X:      "to_wtotl",
					Y:      "ps_wtotl",
					XLabel: "Total Water Withdrawal (Mgal/d)",
					YLabel: "Public Supply Water Withdrawal",
				},
			},
		},
		{
			Name:  PopulationIncome,
			Title: "Population vs. Median Income",
			Description: "Here you can see what cluster they are in for baseline understanding of socioeconomic " +
				"considerations, water demand, and resource management.",
			Columns: []string{"population", "median_household_income"},
			Panels: []Panel{{
				Title:  "Population and Income",
				X:      "population",
				Y:      "median_household_income",
				XLabel: "Population",
				YLabel: "Median Household Income",
			}},
		},
	}
}

// Catalog is an ordered set of selections addressed by name.
type Catalog struct {
	selections []Selection
}

// NewCatalog validates selections and rejects duplicate names.
func NewCatalog(selections []Selection) (*Catalog, error) {
	seen := make(map[string]bool, len(selections))
	for _, s := range selections {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, invalid("selection", "duplicate name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return &Catalog{selections: slices.Clone(selections)}, nil
}

// DefaultCatalog returns the built-in selections.
func DefaultCatalog() *Catalog {
	return &Catalog{selections: DefaultSelections()}
}

type catalogFile struct {
	Replace    bool        `yaml:"replace"`
	Selections []Selection `yaml:"selections"`
}

// LoadCatalog reads a YAML selections file. Entries replace built-ins of the
// same name and new names are appended, unless the file sets replace: true,
// in which case only the file's selections are kept. An empty path returns
// the built-ins.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cluster: read selections file %s", path)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "cluster: parse selections file %s", path)
	}

	var merged []Selection
	if !f.Replace {
		merged = DefaultSelections()
	}
	for _, s := range f.Selections {
		i := slices.IndexFunc(merged, func(m Selection) bool { return m.Name == s.Name })
		if i >= 0 {
			merged[i] = s
			continue
		}
		merged = append(merged, s)
	}

	c, err := NewCatalog(merged)
	if err != nil {
		return nil, eris.Wrapf(err, "cluster: selections file %s", path)
	}
	return c, nil
}

// Get returns the selection with the given name.
func (c *Catalog) Get(name string) (Selection, error) {
	for _, s := range c.selections {
		if s.Name == name {
			return s, nil
		}
	}
	return Selection{}, notFound("selection", name)
}

// List returns all selections in catalog order.
func (c *Catalog) List() []Selection {
	return slices.Clone(c.selections)
}

// Names returns the selection names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.selections))
	for i, s := range c.selections {
		names[i] = s.Name
	}
	return names
}
