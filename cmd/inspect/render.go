package main

import (
	"fmt"
	"io"
	"time"
	"tpa-lab/repositories"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func filterOnline(players []repositories.PlayerPosition) []repositories.PlayerPosition {
	return lo.Filter(players, func(p repositories.PlayerPosition, _ int) bool { return p.Online })
}

func renderPlayers(w io.Writer, players []repositories.PlayerPosition, colours bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Player", "Name", "Group", "X", "Y", "Z", "Rotation", "Status", "Last seen"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, p := range players {
		table.Append([]string{
			p.ActorID.String(),
			p.CharacterName,
			p.GroupName,
			coordinate(p.Position.X),
			coordinate(p.Position.Y),
			coordinate(p.Position.Z),
			coordinate(p.RotationY),
			status(p.Online, colours),
			p.LastSeen.UTC().Format(time.RFC3339),
		})
	}
	table.Render()
}

func coordinate(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func status(online, colours bool) string {
	if !colours {
		if online {
			return "online"
		}
		return "offline"
	}
	if online {
		return color.New(color.FgGreen).Render("online")
	}
	return color.New(color.FgGray).Render("offline")
}
