package mpd_test

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pior/mpd"
)

// Example demonstrating how to list the queue with a pooled client
func ExampleNewClient() {
	client, err := mpd.NewClient(mpd.DefaultAddr, mpd.Config{
		MaxSize:             2,
		MaxConnIdleTime:     30 * time.Second,
		HealthCheckInterval: 10 * time.Second,
		NewCircuitBreaker:   mpd.NewCircuitBreakerConfig(3, time.Minute, 10*time.Second),
		Logger:              slog.Default(),
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	songs, err := client.PlaylistInfo(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, song := range songs {
		artist, _ := song.Tag(mpd.TagArtist, 0)
		title, _ := song.Tag(mpd.TagTitle, 0)
		fmt.Printf("%d. %s - %s (%ds)\n", song.Pos()+1, artist, title, song.Time())
		song.Release()
	}
}

// Example decoding a custom command's response on a pooled connection
func ExampleClient_Execute() {
	client, err := mpd.NewClient("/run/mpd/socket", mpd.Config{})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer client.Close()

	err = client.Execute(context.Background(), func(conn *mpd.Connection) error {
		if err := conn.SendCommand("playlistfind", "artist", "Johann Sebastian Bach"); err != nil {
			return err
		}

		for {
			song, err := conn.RecvSong()
			if err != nil {
				return err
			}
			if song == nil {
				break
			}
			fmt.Println(song.URI())
			song.Release()
		}

		return conn.ResponseFinish()
	})
	if err != nil {
		fmt.Println(err)
	}
}
