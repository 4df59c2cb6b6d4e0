package support

import (
	"context"
	"time"

	"studiodesk/internal/domain/order"
	supportsvc "studiodesk/internal/services/support"
	"studiodesk/internal/tools/shared"
)

// NewCreateClientEnquiryTool registers a new client enquiry
func NewCreateClientEnquiryTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "create_client_enquiry",
		Description: "Register a new client enquiry. Requires name, email and phone; birthday, address and enrolled services are optional.",
		Category:    shared.CategorySupport,
		Parameters: shared.ObjectSchema(map[string]interface{}{
			"name":     shared.StringProp("Full name"),
			"email":    shared.StringProp("Email address"),
			"phone":    shared.StringProp("Phone number"),
			"birthday": shared.StringProp("Birthday as YYYY-MM-DD"),
			"address":  shared.StringProp("Postal address"),

			"enrolled_services": shared.StringListProp("Course or class ids the client is enrolling in"),
		}, "name", "email", "phone"),
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, args shared.Args) (interface{}, error) {
		// Some models wrap everything in a single enquiry_data object
		if nested, err := args.Object("enquiry_data"); err == nil {
			args = nested
		}

		birthday, err := args.Date("birthday")
		if err != nil {
			return nil, err
		}
		services, err := args.StringList("enrolled_services")
		if err != nil {
			return nil, err
		}

		id, err := deps.Support.CreateClientEnquiry(ctx, supportsvc.EnquiryInput{
			Name:     args.OptionalString("name"),
			Email:    args.OptionalString("email"),
			Phone:    args.OptionalString("phone"),
			Birthday: birthday,
			Address:  args.OptionalString("address"),

			EnrolledServices: services,
		})
		if err != nil {
			return nil, err
		}
		return map[string]string{"message": "Client enquiry created", "client_id": id}, nil
	}, deps).
		OnError(func(shared.Args) string { return "Error creating client enquiry" }).
		WithTimeout(15 * time.Second).
		WithStats().
		Build()
}

// NewCreateOrderTool places a pending order for a client
func NewCreateOrderTool(deps shared.Deps) shared.Tool {
	def := shared.Definition{
		Name:        "create_order",
		Description: "Place a new service order for an existing client. The service must be an existing course or class.",
		Category:    shared.CategorySupport,
		Parameters: shared.ObjectSchema(map[string]interface{}{
			"client_id": shared.StringProp("Client id"),
			"service_info": shared.ObjectSchema(map[string]interface{}{
				"service_id":   shared.StringProp("Course or class id"),
				"service_type": shared.EnumProp("Kind of service", string(order.ServiceCourse), string(order.ServiceClass)),
				"service_name": shared.StringProp("Course or class name"),
				"amount":       shared.NumberProp("Order amount, not negative"),
			}, "service_id", "service_type", "service_name", "amount"),
		}, "client_id", "service_info"),
	}

	return shared.NewToolBuilder(def, func(ctx context.Context, args shared.Args) (interface{}, error) {
		if nested, err := args.Object("order_data"); err == nil {
			args = nested
		}

		clientID, err := args.String("client_id")
		if err != nil {
			return nil, err
		}
		info, err := args.Object("service_info")
		if err != nil {
			return nil, err
		}
		amount, err := info.Float("amount")
		if err != nil {
			return nil, err
		}

		id, err := deps.Support.CreateOrder(ctx, clientID, supportsvc.ServiceInfo{
			ServiceID:   info.OptionalString("service_id"),
			ServiceType: info.OptionalString("service_type"),
			ServiceName: info.OptionalString("service_name"),
			Amount:      amount,
		})
		if err != nil {
			return nil, err
		}
		return map[string]string{"message": "Order created", "order_id": id}, nil
	}, deps).
		OnError(func(shared.Args) string { return "Error creating order" }).
		WithTimeout(15 * time.Second).
		WithStats().
		Build()
}
