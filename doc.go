// Package ytcurator curates a YouTube playlist: it classifies every entry
// by availability, computes a canonical most-recent-first order, prunes
// entries beyond a retention cap, and reconciles the playlist toward that
// order with the minimal set of position updates and deletions.
//
// # Overview
//
// The engine lives in the playlist package and is pure: it operates on
// fully materialized entry lists and emits a Report of per-entry actions.
// The youtube package supplies the Data API v3 backed source and sink.
//
// # Quick Start
//
// Curate a playlist:
//
//	client, err := youtube.NewClient(ctx, youtube.ClientOptions{
//		CredentialsFile: "service-account.json",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	curator := playlist.NewCurator(
//		youtube.NewPlaylistSource(client, playlistID, "US"),
//		youtube.NewPlaylistSink(client, playlistID),
//		playlist.Options{MaxRetained: 10},
//	)
//	report, err := curator.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	curator.Print(os.Stdout, report)
//
// A dry run computes the same report without touching the playlist:
//
//	playlist.Options{MaxRetained: 10, DryRun: true}
//
// Classification is deterministic and needs the whole playlist, so the
// source always paginates to the end before any decision is made.
package ytcurator
