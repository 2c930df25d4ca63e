package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pior/mpd"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "playlist",
		Aliases: []string{"queue"},
		Short:   "List the songs of the queue",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *mpd.Client) error {
				songs, err := client.PlaylistInfo(c)
				if err != nil {
					return err
				}
				defer releaseSongs(songs)

				if len(songs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "The queue is empty")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderPlaylist(songs))
				return nil
			})
		},
	}
}

func newCurrentCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the song being played",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *mpd.Client) error {
				song, err := client.CurrentSong(c)
				if err != nil {
					return err
				}
				if song == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing is playing")
					return nil
				}
				defer song.Release()

				fmt.Fprintln(cmd.OutOrStdout(), renderSong(song))
				return nil
			})
		},
	}
}

func releaseSongs(songs []*mpd.Song) {
	for _, song := range songs {
		song.Release()
	}
}

func renderPlaylist(songs []*mpd.Song) string {
	rows := make([][]string, 0, len(songs))
	for _, song := range songs {
		rows = append(rows, []string{
			formatPos(song.Pos()),
			joinTag(song, mpd.TagArtist),
			songTitle(song),
			joinTag(song, mpd.TagAlbum),
			formatDuration(song.Time()),
		})
	}

	return renderTable(
		[]string{"#", "Artist", "Title", "Album", "Time"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

// renderSong lists every tag of song, one row per kind.
func renderSong(song *mpd.Song) string {
	titler := cases.Title(language.Und)

	var rows [][]string
	for tag := mpd.TagType(0); tag < mpd.TagCount; tag++ {
		if song.TagCount(tag) == 0 {
			continue
		}
		label := titler.String(strings.ReplaceAll(strings.ToLower(tag.String()), "_", " "))
		rows = append(rows, []string{label, joinTag(song, tag)})
	}

	rows = append(rows,
		[]string{"Time", formatDuration(song.Time())},
		[]string{"Pos", formatPos(song.Pos())},
		[]string{"Id", formatID(song.ID())},
	)

	return renderTable([]string{"Tag", "Value"}, rows, nil)
}

func joinTag(song *mpd.Song, tag mpd.TagType) string {
	return strings.Join(song.TagValues(tag), "; ")
}

// songTitle falls back to the stream name, then the file name.
func songTitle(song *mpd.Song) string {
	if title := joinTag(song, mpd.TagTitle); title != "" {
		return title
	}
	if name := joinTag(song, mpd.TagName); name != "" {
		return name
	}
	return song.URI()
}

func formatDuration(seconds int) string {
	if seconds == mpd.NoTime {
		return "-"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func formatPos(pos int) string {
	if pos == mpd.NoPos {
		return "-"
	}
	return strconv.Itoa(pos + 1)
}

func formatID(id int) string {
	if id == mpd.NoID {
		return "-"
	}
	return strconv.Itoa(id)
}
