package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"barkroom/domain"
	"barkroom/repositories"
)

// Config carries the defaults overridable by environment, flags win over both.
type Config struct {
	DBPath string `envconfig:"HISTORYCTL_DB_PATH" default:"/tmp/barkroom/badger"`
	// HISTORYCTL_COLOURS enables colorized output for better readability
	Colours  bool `envconfig:"HISTORYCTL_COLOURS" default:"true"`
	PageSize int  `envconfig:"HISTORYCTL_PAGE_SIZE" default:"20"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal("Error reading environment: ", err)
	}

	dbPath := flag.String("db", cfg.DBPath, "Path to badger DB")
	room := flag.String("room", "", "Room to dump (required)")
	page := flag.Int("page", 1, "History page, newest first")
	flag.Parse()

	if *room == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Read-only open so a running server keeps its lock.
	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	repository := repositories.NewMessageRepository(db, slog.Default())
	messages, totalPages, err := repository.ListMessages(domain.RoomName(*room), *page, cfg.PageSize)
	if err != nil {
		log.Fatal("Error reading history: ", err)
	}

	header := fmt.Sprintf("Room %q, page %d/%d, %d message(s)", *room, *page, totalPages, len(messages))
	if cfg.Colours {
		color.Style{color.FgMagenta, color.OpBold}.Println(header)
	} else {
		fmt.Println(header)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"At", "Author", "Lang", "Message", "ID"})
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

	for _, message := range messages {
		author := message.Author
		if cfg.Colours {
			author = color.FgCyan.Render(author)
		}
		table.Append([]string{
			message.At.Format("2006-01-02 15:04:05"),
			author,
			message.Lang,
			message.Content,
			message.ID.String()[:8],
		})
	}

	table.Render()
}
