//go:generate mockgen -source=../timestamp_store.go -destination=./mock_timestamp_store.go -package=mocks
//go:generate mockgen -source=../order_source.go    -destination=./mock_order_source.go    -package=mocks
//go:generate mockgen -source=../event_publisher.go -destination=./mock_event_publisher.go -package=mocks

package mocks
