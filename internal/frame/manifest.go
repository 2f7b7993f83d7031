// Package frame builds the embed metadata the hosting feed uses to render a
// rich preview and launch affordance for the widget.
package frame

import "encoding/json"

// Embed is the frame embed descriptor carried in the host document metadata.
type Embed struct {
	Version  string `json:"version"`
	ImageURL string `json:"imageUrl"`
	Button   Button `json:"button"`
}

// Button describes the launch affordance.
type Button struct {
	Title  string `json:"title"`
	Action Action `json:"action"`
}

// Action describes what launching the button does.
type Action struct {
	Type                  string `json:"type"`
	Name                  string `json:"name"`
	URL                   string `json:"url"`
	SplashImageURL        string `json:"splashImageUrl"`
	SplashBackgroundColor string `json:"splashBackgroundColor"`
}

// Default returns the widget's embed descriptor.
func Default(appURL string) Embed {
	return Embed{
		Version:  "next",
		ImageURL: appURL + "/preview.png",
		Button: Button{
			Title: "Open Wallet",
			Action: Action{
				Type:                  "launch_frame",
				Name:                  "Wallet Widget",
				URL:                   appURL,
				SplashImageURL:        appURL + "/splash.png",
				SplashBackgroundColor: "#0b0e14",
			},
		},
	}
}

// JSON renders the descriptor as indented JSON.
func (e Embed) JSON() (string, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
