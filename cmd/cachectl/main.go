package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gunvolt24/order_notifier/internal/cache/jsonfile"
	"github.com/Gunvolt24/order_notifier/pkg/logger"
	"github.com/Gunvolt24/order_notifier/pkg/validate"
)

const usage = `usage: cachectl <command> [flags]

commands:
  list   -file F                 вывести записи (ключ, время) по возрастанию времени
  evict  -file F -older 24h      удалить записи старше заданного возраста
  remove -file F -key K          удалить одну запись
  clear  -file F                 удалить все записи
  check  -file F [-settings]     проверить формат файла кеша или настроек
`

// CLI для обслуживания файлов кеша «ключ → время».
func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(context.Background(), os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "cachectl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	file := fs.String("file", "", "path to cache file")
	older := fs.Duration("older", 24*time.Hour, "evict: maximum entry age")
	key := fs.String("key", "", "remove: key to delete")
	isSettings := fs.Bool("settings", false, "check: validate settings file instead of cache")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	if cmd == "check" {
		return check(*file, *isSettings, out)
	}

	logg, cleanup, err := logger.NewZapLogger(false)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	name := strings.TrimSuffix(filepath.Base(*file), filepath.Ext(*file))
	store := jsonfile.Open(ctx, name, *file, logg.Local())

	switch cmd {
	case "list":
		entries, err := store.Entries(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s\t%s\n", e.Key, e.At.Format(jsonfile.TimeLayout))
		}
		fmt.Fprintf(out, "total: %d\n", len(entries))
	case "evict":
		n, err := store.EvictOlderThan(ctx, *older)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "evicted: %d\n", n)
	case "remove":
		if *key == "" {
			return fmt.Errorf("-key is required")
		}
		if err := store.Remove(ctx, *key); err != nil {
			return err
		}
		fmt.Fprintf(out, "removed: %s\n", *key)
	case "clear":
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "cleared")
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func check(path string, isSettings bool, out io.Writer) error {
	if isSettings {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		s, err := validate.SettingsFromJSON(raw)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "settings ok (primary=%t followup=%t log chats=%d)\n",
			s.PrimaryEnabled, s.FollowUpEnabled, len(s.LogChatIDs))
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rep, err := validate.CacheFile(f)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "cache %s\n", rep)
	if len(rep.Invalid) > 0 {
		return fmt.Errorf("invalid keys: %s", strings.Join(rep.Invalid, ", "))
	}
	return nil
}
