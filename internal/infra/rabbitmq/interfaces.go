package rabbitmq

import "storefront-service/internal/infra/events"

var _ events.Publisher = (*Publisher)(nil)
