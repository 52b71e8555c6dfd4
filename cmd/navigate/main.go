package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/evanhutnik/mapnav/internal/autocomplete"
	"github.com/evanhutnik/mapnav/internal/backend"
	"github.com/evanhutnik/mapnav/internal/client"
	"github.com/evanhutnik/mapnav/internal/input"
	"github.com/evanhutnik/mapnav/internal/ipapi"
	"github.com/evanhutnik/mapnav/internal/mapview"
	"go.uber.org/zap"
)

type console struct {
	shown chan []autocomplete.Entry
}

func (c *console) Notify(msg string) {
	fmt.Fprintln(os.Stderr, "!", msg)
}

func (c *console) ShowTrip(distance, duration string) {
	fmt.Printf("Distance: %s\nTime:     %s\n", distance, duration)
}

func (c *console) Show(_ input.ID, entries []autocomplete.Entry) {
	select {
	case c.shown <- entries:
	default:
	}
}

func (c *console) Hide() {}

func main() {
	server := flag.String("server", "http://localhost:3000", "mapnav server base url")
	from := flag.String("from", "", "starting address")
	to := flag.String("to", "", "destination address")
	myLocation := flag.Bool("my-location", false, "start from the current location (ip based)")
	search := flag.String("search", "", "address to show on the map")
	suggest := flag.String("suggest", "", "print autocomplete suggestions for this text")
	verbose := flag.Bool("v", false, "log diagnostics")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ui := &console{shown: make(chan []autocomplete.Entry, 1)}
	app := client.New(client.Config{
		API:       backend.New(backend.BaseUrlOption(*server)),
		Canvas:    mapview.NewTextCanvas(os.Stdout),
		Dropdown:  ui,
		Display:   ui,
		Notifier:  ui,
		IPLocator: ipapi.New(),
		Logger:    logger.Sugar(),
	})

	if err := app.Init(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *suggest != "":
		app.Autocomplete.TextChanged(input.Start, *suggest)
		select {
		case entries := <-ui.shown:
			for i, e := range entries {
				fmt.Printf("%d. %s\n", i, e.Label())
			}
		case <-time.After(autocomplete.DefaultQuietPeriod + autocomplete.DefaultLookupTimeout):
			fmt.Println("no suggestions")
		}

	case *search != "":
		if _, err := app.Search(ctx, *search); err != nil {
			os.Exit(1)
		}

	default:
		if *myLocation {
			app.Start.ApplyMyLocationStyling()
			loc, err := app.Map.ResolveMyLocation(ctx)
			if err != nil {
				ui.Notify(err.Error())
				os.Exit(1)
			}
			app.Start.SetMyLocation(loc)
		} else {
			app.Start.SetValue(*from)
		}
		app.Destination.SetValue(*to)

		if _, err := app.Navigate(ctx); err != nil {
			os.Exit(1)
		}
	}
}
