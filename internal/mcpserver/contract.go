package mcpserver

// InteractionFormatContract describes the canonical interaction record
// format that LLM consumers should follow when logging interactions.
const InteractionFormatContract = `# Outreach Interaction Record Contract

Every interaction logged through the outreach tools MUST follow this
structure.

## Type tags

The ` + "`type`" + ` argument MUST be one of:

| Tag | Meaning |
|---|---|
| ` + "`contact`" + ` | Check-in / Contact |
| ` + "`service`" + ` | Service Provided |
| ` + "`referral`" + ` | Referral Made |
| ` + "`follow_up`" + ` | Follow-up |
| ` + "`assessment`" + ` | Assessment |
| ` + "`transport`" + ` | Transportation |
| ` + "`emergency`" + ` | Emergency Response |

The ` + "`Initial Intake`" + ` type is reserved for the intake flow and
cannot be logged directly.

## Rules

1. **Notes are required.** Describe the interaction, services provided,
   and client needs in plain prose.
2. **One record per contact event.** Do not batch several encounters into
   a single record.
3. **Records are immutable.** A mistaken record is corrected by logging a
   follow-up, never by editing.
4. **Counters are maintained for you.** Logging an interaction advances
   the client's contact count and last-contact timestamp atomically; do
   not attempt to update them separately.
5. **Worker attribution** defaults to the configured service identity
   when ` + "`worker_name`" + ` is omitted.

## Example

` + "```" + `json
{
  "id": "2f1e9c9a-8b2d-4a5e-9c3f-d41a6a1f7b20",
  "type": "service",
  "notes": "Provided sleeping bag and water. Client asked about shelter beds for next week.",
  "worker_name": "jsmith"
}
` + "```" + `
`
