// Command supplydesk runs and administers the SupplyDesk office-supply
// request service.
//
//	supplydesk serve                      # start the HTTP server
//	supplydesk migrate                    # run migrations
//	supplydesk migrate:rollback
//	supplydesk migrate:status
//	supplydesk seed                       # insert demo requests
//	supplydesk route:list                 # list API routes
//	supplydesk requests:list [--summary]
//	supplydesk requests:status 3 Approved
//	supplydesk requests:delete 3
//	supplydesk notify bob@ceat.com "Your order is at reception"
package main
