package model

import (
	"strings"
	"time"
)

// Template is a preloaded maintenance task users can add with one action.
type Template struct {
	Name      string
	Icon      string
	Frequency Frequency
	Notes     string
}

// Params returns creation params for the template. Seasonal templates get an
// explicit first due date at their anchor; others start from now.
func (t Template) Params(now time.Time) TaskParams {
	p := TaskParams{
		Name:        t.Name,
		Icon:        t.Icon,
		Notes:       t.Notes,
		Frequency:   t.Frequency,
		IsPreloaded: true,
	}
	if t.Frequency.Kind == FrequencySeasonal {
		due := t.Frequency.NextAnchorDate(now)
		p.NextDueDate = &due
	}
	return p
}

var templates = []Template{
	{Name: "HVAC Filter Replacement", Icon: "wind", Frequency: Every(3, FrequencyMonths),
		Notes: "Replace or clean your HVAC air filter. Check monthly if you have pets."},
	{Name: "Gutter Cleaning", Icon: "drop.triangle", Frequency: Every(6, FrequencyMonths),
		Notes: "Remove debris from gutters and check downspouts for blockages."},
	{Name: "Water Heater Flush", Icon: "flame", Frequency: Every(12, FrequencyMonths),
		Notes: "Drain and flush the water heater to remove sediment buildup."},
	{Name: "Smoke Detector Batteries", Icon: "sensor", Frequency: Every(6, FrequencyMonths),
		Notes: "Replace batteries and test all smoke and carbon monoxide detectors."},
	{Name: "Dryer Vent Cleaning", Icon: "wind", Frequency: Every(12, FrequencyMonths),
		Notes: "Clean the dryer vent duct to prevent fire hazards and improve efficiency."},
	{Name: "Refrigerator Coil Cleaning", Icon: "refrigerator", Frequency: Every(12, FrequencyMonths),
		Notes: "Vacuum the condenser coils on the back or bottom of your refrigerator."},
	{Name: "Garbage Disposal Cleaning", Icon: "arrow.3.trianglepath", Frequency: Every(1, FrequencyMonths),
		Notes: "Clean with ice cubes and citrus peels. Check for odors and clogs."},
	{Name: "Dishwasher Filter Cleaning", Icon: "dishwasher", Frequency: Every(1, FrequencyMonths),
		Notes: "Remove and rinse the filter. Run a cleaning cycle with vinegar."},
	{Name: "Washing Machine Clean Cycle", Icon: "washer", Frequency: Every(1, FrequencyMonths),
		Notes: "Run an empty hot cycle with washing machine cleaner or vinegar."},
	{Name: "Range Hood Filter", Icon: "oven", Frequency: Every(3, FrequencyMonths),
		Notes: "Soak the metal filter in hot soapy water or run through dishwasher."},
	{Name: "Test Garage Auto-Reverse", Icon: "door.garage.closed", Frequency: Every(6, FrequencyMonths),
		Notes: "Place an object under the door and test the auto-reverse safety feature."},
	{Name: "Recaulk Bathrooms", Icon: "drop", Frequency: Every(12, FrequencyMonths),
		Notes: "Inspect and replace worn caulk around tubs, showers, and sinks."},
	{Name: "Check Fire Extinguisher", Icon: "flame.circle", Frequency: Every(12, FrequencyMonths),
		Notes: "Verify pressure gauge is in the green zone. Check for damage or corrosion."},
	{Name: "Winterize Spigots", Icon: "snowflake", Frequency: Seasonal(time.October, 1),
		Notes: "Disconnect hoses, drain outdoor faucets, and install insulated covers before winter."},
	{Name: "AC Service", Icon: "air.conditioner.horizontal", Frequency: Every(12, FrequencyMonths),
		Notes: "Schedule professional maintenance. Clean outdoor unit, check refrigerant levels."},
	{Name: "Pest Control", Icon: "ant", Frequency: Every(3, FrequencyMonths),
		Notes: "Inspect for signs of pests. Apply preventive treatments around the perimeter."},
	{Name: "Pressure Wash Exterior", Icon: "house", Frequency: Every(12, FrequencyMonths),
		Notes: "Pressure wash siding, driveway, patio, and walkways."},
	{Name: "Septic Pump", Icon: "arrow.down.to.line", Frequency: Every(4, FrequencyYears),
		Notes: "Schedule professional septic tank pumping. Inspect baffles and drain field."},
	{Name: "Roof Inspection", Icon: "house.lodge", Frequency: Every(12, FrequencyMonths),
		Notes: "Check for missing or damaged shingles, flashing, and signs of leaks."},
	{Name: "Deep Clean Carpets", Icon: "rectangle.split.3x3", Frequency: Every(6, FrequencyMonths),
		Notes: "Steam clean or shampoo carpets. Consider professional cleaning annually."},
}

// Templates returns a copy of the built-in library.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// SearchTemplates filters the library by a case-insensitive name substring.
// An empty query returns everything.
func SearchTemplates(query string) []Template {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Templates()
	}
	var out []Template
	for _, t := range templates {
		if strings.Contains(strings.ToLower(t.Name), q) {
			out = append(out, t)
		}
	}
	return out
}

// FindTemplate looks a template up by exact name.
func FindTemplate(name string) (Template, bool) {
	for _, t := range templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}
