package handlers

// HomeData is the view model for the landing page.
type HomeData struct {
	Headline string
	Tagline  string
	Steps    []HomeStep
}

// HomeStep explains one stage of the pre-order import flow.
type HomeStep struct {
	Title string
	Body  string
}

// BuildHomeData constructs the default view model for the landing page.
func BuildHomeData() HomeData {
	return HomeData{
		Headline: "London's Imports",
		Tagline:  "Pre-order quality goods from the UK, delivered across Ghana.",
		Steps: []HomeStep{
			{Title: "Browse", Body: "Pick from the current import catalog."},
			{Title: "Pre-order", Body: "Pay in full, or secure your order with a 30% deposit."},
			{Title: "Receive", Body: "We ship to your region once the batch lands in Accra."},
		},
	}
}
