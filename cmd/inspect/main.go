// Command inspect dumps conversations and messages from a Badger
// database in table form. It opens the store read-only and bypasses the
// lock guard so it can run next to a live server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"tutor-chat/domain"
)

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	conversation := flag.String("conversation", "", "Dump messages of one conversation instead of the conversation list")
	flag.Parse()

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	if *conversation != "" {
		color.Green.Printf("Messages in conversation %s\n", *conversation)
		if err := dumpMessages(db, *conversation); err != nil {
			log.Fatal(err)
		}
		return
	}

	color.Green.Println("Conversations")
	if err := dumpConversations(db); err != nil {
		log.Fatal(err)
	}
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func dumpConversations(db *badger.DB) error {
	table := newTable([]string{"ID", "Type", "Student", "Educator", "Active", "Last Message At"})

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("conv:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				var conv domain.Conversation
				if err := json.Unmarshal(v, &conv); err != nil {
					fmt.Printf("Error unmarshaling key %s: %v\n", string(it.Item().Key()), err)
					return nil
				}

				student, _ := conv.ByRole(domain.RoleStudent)
				educator, _ := conv.ByRole(domain.RoleEducator)
				lastAt := ""
				if conv.LastMessageAt != nil {
					lastAt = conv.LastMessageAt.Format(time.RFC3339)
				}
				table.Append([]string{
					conv.ID,
					string(conv.Type),
					student.ID(),
					educator.ID(),
					fmt.Sprintf("%t", conv.IsActive),
					lastAt,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}

func dumpMessages(db *badger.DB, conversationID string) error {
	table := newTable([]string{"At", "From", "To", "Type", "Read", "Content"})

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("msg:" + conversationID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				var msg domain.Message
				if err := json.Unmarshal(v, &msg); err != nil {
					fmt.Printf("Error unmarshaling key %s: %v\n", string(it.Item().Key()), err)
					return nil
				}
				table.Append([]string{
					msg.CreatedAt.Format(time.RFC3339),
					msg.Sender.ID(),
					msg.Receiver.ID(),
					string(msg.MessageType),
					fmt.Sprintf("%t", msg.IsRead()),
					msg.Content,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}
