package console

// helpText is the fixed block printed by the help verb (spec §4.E: "Prints
// a fixed help block").
const helpText = `Commands:
  list                                 show every connected driver and its catalog
  help                                 show this message
  cmd <driver> <slot> <name> <arg>*    invoke a driver command by name`
