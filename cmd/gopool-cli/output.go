package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joshp123/gopool/internal/connectmypool"
)

func printJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("format json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func table(rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintln(w, joinRow(row))
	}
	_ = w.Flush()
}

func joinRow(row []string) string {
	if len(row) == 0 {
		return ""
	}
	out := row[0]
	for i := 1; i < len(row); i++ {
		out += "\t" + row[i]
	}
	return out
}

func printConfig(cfg *connectmypool.Config) {
	rows := [][]string{{"TYPE", "NUMBER", "NAME", "DETAIL"}}
	for _, h := range cfg.Heaters {
		rows = append(rows, []string{"heater", fmt.Sprint(h.HeaterNumber), h.Name, ""})
	}
	for _, ch := range cfg.Channels {
		rows = append(rows, []string{"channel", fmt.Sprint(ch.ChannelNumber), ch.Name, ch.Function})
	}
	for _, v := range cfg.Valves {
		rows = append(rows, []string{"valve", fmt.Sprint(v.ValveNumber), v.Name, ""})
	}
	for _, lz := range cfg.LightingZones {
		detail := ""
		if lz.ColorEnabled {
			detail = fmt.Sprintf("%d colors", len(lz.ColorsAvailable))
		}
		rows = append(rows, []string{"light", fmt.Sprint(lz.LightingZoneNumber), lz.Name, detail})
	}
	for _, s := range cfg.SolarSystems {
		rows = append(rows, []string{"solar", fmt.Sprint(s.SolarNumber), s.Name, ""})
	}
	for _, fav := range cfg.Favourites {
		rows = append(rows, []string{"favourite", fmt.Sprint(fav.FavouriteNumber), fav.Name, ""})
	}
	table(rows)

	fmt.Printf("\npool/spa selection: %v, heat/cool selection: %v\n",
		cfg.PoolSpaSelectionEnabled, cfg.HeatCoolSelectionEnabled)
}

func printStatus(status *connectmypool.Status) {
	if status.Temperature != nil {
		fmt.Printf("water temperature: %.1f\n", *status.Temperature)
	}
	fmt.Printf("mode: %s\n", connectmypool.PoolSpaLabels[status.PoolOrSpa()])
	if status.ActiveFavourite != nil && *status.ActiveFavourite != connectmypool.FavouriteNone {
		fmt.Printf("active favourite: %d\n", *status.ActiveFavourite)
	}
	fmt.Println()

	rows := [][]string{{"TYPE", "NUMBER", "MODE", "DETAIL"}}
	for _, h := range status.Heaters {
		detail := ""
		if h.SetTemperature != nil {
			detail = fmt.Sprintf("set %d", *h.SetTemperature)
		}
		rows = append(rows, []string{"heater", fmt.Sprint(h.HeaterNumber), fmt.Sprint(h.Mode), detail})
	}
	for _, ch := range status.Channels {
		rows = append(rows, []string{"channel", fmt.Sprint(ch.ChannelNumber),
			connectmypool.ChannelModeLabels[ch.Mode], ""})
	}
	for _, v := range status.Valves {
		rows = append(rows, []string{"valve", fmt.Sprint(v.ValveNumber),
			connectmypool.TriModeLabels[v.Mode], ""})
	}
	for _, lz := range status.LightingZones {
		detail := ""
		if lz.Color != nil {
			detail = fmt.Sprintf("color %d", *lz.Color)
		}
		rows = append(rows, []string{"light", fmt.Sprint(lz.LightingZoneNumber),
			connectmypool.TriModeLabels[lz.Mode], detail})
	}
	for _, s := range status.SolarSystems {
		detail := ""
		if s.SetTemperature != nil {
			detail = fmt.Sprintf("set %d", *s.SetTemperature)
		}
		rows = append(rows, []string{"solar", fmt.Sprint(s.SolarNumber),
			connectmypool.TriModeLabels[s.Mode], detail})
	}
	table(rows)
}

func printActionResult(result *connectmypool.ActionResult) {
	if result.ActionNumber != nil {
		fmt.Printf("action number: %d\n", *result.ActionNumber)
	}
	if result.Status != nil {
		fmt.Printf("status: %d\n", *result.Status)
	}
	if result.ActionNumber == nil && result.Status == nil {
		fmt.Println("accepted")
	}
}
