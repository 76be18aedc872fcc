package client

import (
	"context"
	"fmt"
	"regexp"
)

// Station is a broadcast station known to the panel.
type Station struct {
	StationCode int    `json:"station_code"`
	StationName string `json:"station_name"`
}

// ViewingStation is a station as reported by viewing meters.
type ViewingStation struct {
	ViewingStationCode int    `json:"viewing_station_code"`
	ViewingStationName string `json:"viewing_station_name"`
}

// Panel is a measured household sample for a region.
type Panel struct {
	PanelCode     int    `json:"panel_code"`
	PanelRegion   string `json:"panel_region"`
	IsMacroRegion bool   `json:"is_macro_region"`
}

// Advertiser is an advertiser named in clearcast spot records.
type Advertiser struct {
	AdvertiserName string `json:"advertiser_name"`
	AdvertiserCode string `json:"advertiser_code"`
}

// Buyer is a clearcast buyer.
type Buyer struct {
	BuyerName string `json:"buyer_name"`
}

// ListStations returns the stations available in the API, optionally
// filtered by a case-insensitive name pattern.
func (c *Client) ListStations(ctx context.Context, pattern string) ([]Station, error) {
	var stations []Station
	if err := c.getJSON(ctx, "stations", nil, &stations); err != nil {
		return nil, err
	}
	return filterByName(stations, pattern, func(s Station) string { return s.StationName })
}

// ListViewingStations returns the viewing stations available in the API.
func (c *Client) ListViewingStations(ctx context.Context, pattern string) ([]ViewingStation, error) {
	var stations []ViewingStation
	if err := c.getJSON(ctx, "viewing_stations", nil, &stations); err != nil {
		return nil, err
	}
	return filterByName(stations, pattern, func(s ViewingStation) string { return s.ViewingStationName })
}

// ListPanels returns the measurement panels, optionally filtered by region.
func (c *Client) ListPanels(ctx context.Context, pattern string) ([]Panel, error) {
	var panels []Panel
	if err := c.getJSON(ctx, "panels", nil, &panels); err != nil {
		return nil, err
	}
	return filterByName(panels, pattern, func(p Panel) string { return p.PanelRegion })
}

// ListAdvertisers returns the advertisers known to the API.
func (c *Client) ListAdvertisers(ctx context.Context, pattern string) ([]Advertiser, error) {
	var advertisers []Advertiser
	if err := c.getJSON(ctx, "advertisers", nil, &advertisers); err != nil {
		return nil, err
	}
	return filterByName(advertisers, pattern, func(a Advertiser) string { return a.AdvertiserName })
}

// ListBuyers returns the clearcast buyers known to the API.
func (c *Client) ListBuyers(ctx context.Context, pattern string) ([]Buyer, error) {
	var buyers []Buyer
	if err := c.getJSON(ctx, "buyers", nil, &buyers); err != nil {
		return nil, err
	}
	return filterByName(buyers, pattern, func(b Buyer) string { return b.BuyerName })
}

// filterByName keeps entries whose name matches the pattern. An empty
// pattern keeps everything.
func filterByName[T any](items []T, pattern string, name func(T) string) ([]T, error) {
	if pattern == "" {
		return items, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid name filter: %w", err)
	}

	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if re.MatchString(name(item)) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}
