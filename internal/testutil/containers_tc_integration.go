//go:build integration

package testutil

import (
	"context"
	"log"
	"os"

	tc "github.com/testcontainers/testcontainers-go"
)

// tcLogger — общий логгер событий жизненного цикла контейнеров.
var tcLogger = log.New(os.Stdout, "[tc] ", log.LstdFlags)

func shortID(c tc.Container) string {
	id := c.GetContainerID()
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// lifecycleHooks — пишет в лог создание, готовность и остановку контейнера.
func lifecycleHooks(l *log.Logger, role string) tc.ContainerLifecycleHooks {
	stage := func(name string) tc.ContainerHook {
		return func(_ context.Context, c tc.Container) error {
			l.Printf("%s %s id=%s", role, name, shortID(c))
			return nil
		}
	}
	return tc.ContainerLifecycleHooks{
		PreCreates: []tc.ContainerRequestHook{
			func(_ context.Context, req tc.ContainerRequest) error {
				l.Printf("%s creating image=%s", role, req.Image)
				return nil
			},
		},
		PostReadies:    []tc.ContainerHook{stage("ready")},
		PostTerminates: []tc.ContainerHook{stage("terminated")},
	}
}
